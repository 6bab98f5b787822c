package vm

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/bcosnet/wasmhost/host"
	"github.com/bcosnet/wasmhost/trap"
	"github.com/bcosnet/wasmhost/wat"
)

// fakeContext is a minimal host.Context double: every method returns a
// zero value except ActiveHashAlgorithm, which tests set directly.
type fakeContext struct {
	hashAlgo host.HashAlgorithm
	storage  map[host.Hash]host.Hash
}

func newFakeContext() *fakeContext {
	return &fakeContext{storage: map[host.Hash]host.Hash{}}
}

func (f *fakeContext) GetStorage(key host.Hash) host.Hash { return f.storage[key] }
func (f *fakeContext) SetStorage(key, value host.Hash)    { f.storage[key] = value }
func (f *fakeContext) GetBalance(host.Address) *big.Int           { return big.NewInt(0) }
func (f *fakeContext) GetExternalBalance(host.Address) *big.Int   { return big.NewInt(0) }
func (f *fakeContext) GetBlockHash(uint64) host.Hash               { return host.Hash{} }
func (f *fakeContext) GetBlockNumber() uint64                      { return 0 }
func (f *fakeContext) GetBlockTimestamp() uint64                   { return 0 }
func (f *fakeContext) GetBlockCoinbase() host.Address               { return host.Address{} }
func (f *fakeContext) GetBlockDifficulty() *big.Int                { return big.NewInt(0) }
func (f *fakeContext) GetBlockGasLimit() uint64                    { return 0 }
func (f *fakeContext) GetTxGasPrice() *big.Int                     { return big.NewInt(0) }
func (f *fakeContext) GetTxOrigin() host.Address                    { return host.Address{} }
func (f *fakeContext) GetExternalCode(host.Address) []byte          { return nil }
func (f *fakeContext) Call(host.CallRequest) (host.CallResult, error) {
	return host.CallResult{}, nil
}
func (f *fakeContext) Create(host.CreateRequest) (host.Address, host.CallResult, error) {
	return host.Address{}, host.CallResult{}, nil
}
func (f *fakeContext) SelfDestruct(host.Address) {}
func (f *fakeContext) Log(host.LogEntry)         {}
func (f *fakeContext) RegisterAsset(string, bool, host.Address, uint64) bool { return true }
func (f *fakeContext) IssueFungibleAsset(host.Address, string, uint64) bool  { return true }
func (f *fakeContext) IssueNotFungibleAsset(host.Address, string, string) uint64 {
	return 1
}
func (f *fakeContext) TransferAsset(host.Address, string, uint64, bool) bool { return true }
func (f *fakeContext) GetAssetBalance(host.Address, string) uint64          { return 0 }
func (f *fakeContext) GetNotFungibleAssetIDs(host.Address, string) []uint64 { return nil }
func (f *fakeContext) GetNotFungibleAssetInfo(string, uint64) string        { return "" }
func (f *fakeContext) ActiveHashAlgorithm() host.HashAlgorithm              { return f.hashAlgo }

func compileWAT(t *testing.T, src string) []byte {
	t.Helper()
	code, err := wat.Compile(src)
	if err != nil {
		t.Fatalf("compile WAT fixture: %v", err)
	}
	return code
}

const emptyContract = `(module
	(memory (export "memory") 1)
)`

const validContract = `(module
	(import "ethereum" "finish" (func $finish (param i32 i32)))
	(memory (export "memory") 1)
	(func (export "hash_type") (result i32) (i32.const 0))
	(func (export "deploy") (call $finish (i32.const 0) (i32.const 0)))
	(func (export "main") (call $finish (i32.const 0) (i32.const 0)))
)`

const hashMismatchContract = `(module
	(import "ethereum" "finish" (func $finish (param i32 i32)))
	(memory (export "memory") 1)
	(func (export "hash_type") (result i32) (i32.const 1))
	(func (export "deploy") (call $finish (i32.const 0) (i32.const 0)))
	(func (export "main") (call $finish (i32.const 0) (i32.const 0)))
)`

const outOfGasContract = `(module
	(import "ethereum" "useGas" (func $useGas (param i64)))
	(import "ethereum" "finish" (func $finish (param i32 i32)))
	(memory (export "memory") 1)
	(func (export "hash_type") (result i32) (i32.const 0))
	(func (export "deploy") (call $finish (i32.const 0) (i32.const 0)))
	(func (export "main") (call $useGas (i64.const 1000000)))
)`

const revertContract = `(module
	(import "ethereum" "revert" (func $revert (param i32 i32)))
	(import "ethereum" "finish" (func $finish (param i32 i32)))
	(memory (export "memory") 1)
	(func (export "hash_type") (result i32) (i32.const 0))
	(func (export "deploy") (call $finish (i32.const 0) (i32.const 0)))
	(func (export "main") (call $revert (i32.const 0) (i32.const 32)))
)`

func newTestEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	ctx := context.Background()
	e, err := New(ctx, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close(ctx) })
	return e, ctx
}

func TestVerify_EmptyContractRejected(t *testing.T) {
	e, ctx := newTestEngine(t)
	err := e.Verify(ctx, compileWAT(t, emptyContract))
	if err == nil {
		t.Fatal("expected empty contract to be rejected")
	}
}

func TestExecute_DeployHappyPath(t *testing.T) {
	e, ctx := newTestEngine(t)
	code := compileWAT(t, validContract)
	hc := newFakeContext()

	var dest host.Address
	copy(dest[:], []byte("contract-addr-happy-"))

	res, err := e.Execute(ctx, hc, code, Message{Kind: host.MessageCreate, Destination: dest, Gas: 1000})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Status != trap.StatusSuccess {
		t.Fatalf("status = %v, want success", res.Status)
	}
	if res.IsRevert {
		t.Fatal("expected is_revert=false")
	}
	if string(res.ReturnValue) != string(code) {
		t.Fatal("expected return_value to equal the deployed code")
	}
}

func TestExecute_HashMismatch(t *testing.T) {
	e, ctx := newTestEngine(t)
	code := compileWAT(t, hashMismatchContract)
	hc := newFakeContext() // ActiveHashAlgorithm defaults to Keccak256 (0); contract reports 1

	var dest host.Address
	copy(dest[:], []byte("contract-addr-mismat"))

	_, err := e.Execute(ctx, hc, code, Message{Kind: host.MessageCreate, Destination: dest, Gas: 1000})
	if err == nil {
		t.Fatal("expected a hash type mismatch error")
	}
	if !strings.Contains(err.Error(), "hash type mismatch") {
		t.Fatalf("error = %v, want it to mention hash type mismatch", err)
	}
}

func TestExecute_OutOfGas(t *testing.T) {
	e, ctx := newTestEngine(t)
	code := compileWAT(t, outOfGasContract)
	hc := newFakeContext()

	var dest host.Address
	copy(dest[:], []byte("contract-addr-outgas"))

	res, err := e.Execute(ctx, hc, code, Message{Kind: host.MessageCall, Destination: dest, Gas: 100})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Status != trap.StatusOutOfGas {
		t.Fatalf("status = %v, want out_of_gas", res.Status)
	}
	if res.GasLeft != 0 {
		t.Fatalf("gas_left = %d, want 0", res.GasLeft)
	}
	if !res.IsRevert {
		t.Fatal("expected is_revert=true on out-of-gas")
	}
}

func TestExecute_RevertWithPayload(t *testing.T) {
	e, ctx := newTestEngine(t)
	code := compileWAT(t, revertContract)
	hc := newFakeContext()

	var dest host.Address
	copy(dest[:], []byte("contract-addr-revert"))

	res, err := e.Execute(ctx, hc, code, Message{Kind: host.MessageCall, Destination: dest, Gas: 1000})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Status != trap.StatusRevert {
		t.Fatalf("status = %v, want revert", res.Status)
	}
	if !res.IsRevert {
		t.Fatal("expected is_revert=true")
	}
	if len(res.ReturnValue) != 32 {
		t.Fatalf("return_value length = %d, want 32", len(res.ReturnValue))
	}
}

func TestExecute_ConcurrentReuse(t *testing.T) {
	e, ctx := newTestEngine(t)
	code := compileWAT(t, validContract)

	var dest host.Address
	copy(dest[:], []byte("contract-addr-concur"))

	const workers = 3
	const perWorker = 20

	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		go func() {
			hc := newFakeContext()
			for i := 0; i < perWorker; i++ {
				_, err := e.Execute(ctx, hc, code, Message{Kind: host.MessageCall, Destination: dest, Gas: 1000})
				errs <- err
			}
		}()
	}
	for i := 0; i < workers*perWorker; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Execute: %v", err)
		}
	}
}
