package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/bcosnet/wasmhost/host"
	"github.com/bcosnet/wasmhost/sim"
	"github.com/bcosnet/wasmhost/vm"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a core WASM contract module")
		deploy      = flag.Bool("deploy", false, "Run as a Create message (calls deploy after the hash_type check)")
		caller      = flag.String("caller", "", "Caller address, hex (defaults to the zero address)")
		dest        = flag.String("dest", "", "Destination/contract address, hex (defaults to the zero address)")
		value       = flag.String("value", "0", "Value transferred with the message, decimal")
		input       = flag.String("input", "", "Call input data, hex")
		gas         = flag.Int64("gas", 10_000_000, "Gas supplied to the invocation")
		hashAlgo    = flag.String("hash", "keccak256", "Active hash algorithm: keccak256 or sm3")
		debugImport = flag.Bool("debug-imports", false, "Register the debug-module print* host imports")
		verifyOnly  = flag.Bool("verify", false, "Run admission validation only and exit")
		interactive = flag.Bool("i", false, "Interactive mode with a TUI result viewer")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasmhost -wasm <file.wasm> [-deploy] [-caller hex] [-dest hex] [-value n] [-input hex] [-gas n]")
		fmt.Fprintln(os.Stderr, "       wasmhost -wasm <file.wasm> -verify")
		fmt.Fprintln(os.Stderr, "       wasmhost -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	opts := runOpts{
		wasmFile:    *wasmFile,
		deploy:      *deploy,
		caller:      *caller,
		dest:        *dest,
		value:       *value,
		input:       *input,
		gas:         *gas,
		hashAlgo:    *hashAlgo,
		debugImport: *debugImport,
		verifyOnly:  *verifyOnly,
	}

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOpts struct {
	wasmFile    string
	deploy      bool
	caller      string
	dest        string
	value       string
	input       string
	gas         int64
	hashAlgo    string
	debugImport bool
	verifyOnly  bool
}

func run(o runOpts) error {
	ctx := context.Background()

	code, err := os.ReadFile(o.wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	algo, err := parseHashAlgo(o.hashAlgo)
	if err != nil {
		return err
	}

	engine, err := vm.New(ctx, vm.Config{EnableDebugImports: o.debugImport})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer engine.Close(ctx)

	fmt.Printf("Module: %s (%d bytes)\n", o.wasmFile, len(code))

	if err := engine.Verify(ctx, code); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Admission check passed.")

	if o.verifyOnly {
		return nil
	}

	msg, err := buildMessage(o)
	if err != nil {
		return err
	}

	hc := sim.New(algo)
	hc.WithOrigin(msg.Caller)

	fmt.Printf("\nExecuting %s, gas=%d...\n", entryLabel(msg.Kind), msg.Gas)
	res, err := engine.Execute(ctx, hc, code, msg)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	fmt.Printf("Status:       %s\n", res.Status)
	fmt.Printf("Reverted:     %v\n", res.IsRevert)
	fmt.Printf("Gas left:     %d\n", res.GasLeft)
	fmt.Printf("Return value: %s\n", hex.EncodeToString(res.ReturnValue))

	for _, entry := range hc.Logs() {
		fmt.Printf("Log: topics=%d data=%s\n", len(entry.Topics), hex.EncodeToString(entry.Data))
	}

	return nil
}

func buildMessage(o runOpts) (vm.Message, error) {
	var msg vm.Message
	if o.deploy {
		msg.Kind = host.MessageCreate
	}
	msg.Gas = o.gas

	var err error
	if msg.Caller, err = parseAddress(o.caller); err != nil {
		return msg, fmt.Errorf("caller: %w", err)
	}
	if msg.Destination, err = parseAddress(o.dest); err != nil {
		return msg, fmt.Errorf("dest: %w", err)
	}

	v, ok := new(big.Int).SetString(o.value, 10)
	if !ok {
		return msg, fmt.Errorf("value: not a decimal integer: %q", o.value)
	}
	msg.Value = v

	if o.input != "" {
		data, err := hex.DecodeString(strings.TrimPrefix(o.input, "0x"))
		if err != nil {
			return msg, fmt.Errorf("input: %w", err)
		}
		msg.Input = data
	}
	return msg, nil
}

func parseAddress(s string) (host.Address, error) {
	var addr host.Address
	if s == "" {
		return addr, nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return addr, err
	}
	if len(b) != len(addr) {
		return addr, fmt.Errorf("want %d bytes, got %d", len(addr), len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

func parseHashAlgo(s string) (host.HashAlgorithm, error) {
	switch strings.ToLower(s) {
	case "keccak256", "":
		return host.HashKeccak256, nil
	case "sm3":
		return host.HashSM3, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %q (want keccak256 or sm3)", s)
	}
}

func entryLabel(kind host.MessageKind) string {
	if kind == host.MessageCreate {
		return "deploy"
	}
	return "main"
}
