package abi

import (
	"math/big"

	"github.com/bcosnet/wasmhost/host"
)

// ethereumEntries builds the 33-entry EEI allow-list.
func ethereumEntries() map[string]Entry {
	return map[string]Entry{
		"useGas": bind(i64, sigNone, func(a *host.Adapter, stack []uint64) {
			a.UseGas(int64(stack[0]))
		}),
		"getGasLeft": bind(sigNone, i64, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(a.GasLeft)
		}),
		"getAddress": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Message.Destination)
		}),
		"getExternalBalance": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			addr := readAddress(a, uint32(stack[0]))
			writeU128LE(a, uint32(stack[1]), a.Context.GetExternalBalance(addr))
		}),
		"getBlockHash": bind(i64_i32, i32, func(a *host.Adapter, stack []uint64) {
			h := a.Context.GetBlockHash(stack[0])
			writeHash(a, uint32(stack[1]), h)
			stack[0] = 0
		}),
		"getCallDataSize": bind(sigNone, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(len(a.Message.Input))
		}),
		"callDataCopy": bind(i32_3, sigNone, func(a *host.Adapter, stack []uint64) {
			resultOffset, dataOffset, length := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			a.WriteMemory(resultOffset, sliceOrZero(a.Message.Input, dataOffset, length))
		}),
		"getCaller": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Message.Caller)
		}),
		"getCallValue": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeU128LE(a, uint32(stack[0]), a.Message.Value)
		}),
		"codeCopy": bind(i32_3, sigNone, func(a *host.Adapter, stack []uint64) {
			resultOffset, codeOffset, length := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			a.WriteMemory(resultOffset, sliceOrZero(a.Code, codeOffset, length))
		}),
		"getCodeSize": bind(sigNone, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(len(a.Code))
		}),
		"externalCodeCopy": bind(i32_4, sigNone, func(a *host.Adapter, stack []uint64) {
			addr := readAddress(a, uint32(stack[0]))
			resultOffset, codeOffset, length := uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			code := a.Context.GetExternalCode(addr)
			a.WriteMemory(resultOffset, sliceOrZero(code, codeOffset, length))
		}),
		"getExternalCodeSize": bind(i32, i32, func(a *host.Adapter, stack []uint64) {
			addr := readAddress(a, uint32(stack[0]))
			stack[0] = uint64(len(a.Context.GetExternalCode(addr)))
		}),
		"getBlockCoinbase": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Context.GetBlockCoinbase())
		}),
		"getBlockDifficulty": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeU128LE(a, uint32(stack[0]), a.Context.GetBlockDifficulty())
		}),
		"getBlockGasLimit": bind(sigNone, i64, func(a *host.Adapter, stack []uint64) {
			stack[0] = a.Context.GetBlockGasLimit()
		}),
		"getTxGasPrice": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeU128LE(a, uint32(stack[0]), a.Context.GetTxGasPrice())
		}),
		"log": bind(i32_7, sigNone, func(a *host.Adapter, stack []uint64) {
			dataOffset, length, numTopics := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			entry := host.LogEntry{Data: a.ReadMemory(dataOffset, length)}
			for i := uint32(0); i < numTopics && i < 4; i++ {
				entry.Topics = append(entry.Topics, readHash(a, uint32(stack[3+i])))
			}
			a.Context.Log(entry)
		}),
		"getBlockNumber": bind(sigNone, i64, func(a *host.Adapter, stack []uint64) {
			stack[0] = a.Context.GetBlockNumber()
		}),
		"getBlockTimestamp": bind(sigNone, i64, func(a *host.Adapter, stack []uint64) {
			stack[0] = a.Context.GetBlockTimestamp()
		}),
		"getTxOrigin": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Context.GetTxOrigin())
		}),
		"storageStore": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			key := readHash(a, uint32(stack[0]))
			value := readHash(a, uint32(stack[1]))
			a.Context.SetStorage(key, value)
		}),
		"storageLoad": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			key := readHash(a, uint32(stack[0]))
			writeHash(a, uint32(stack[1]), a.Context.GetStorage(key))
		}),
		"finish": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Finish(a.ReadMemory(uint32(stack[0]), uint32(stack[1])))
		}),
		"revert": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Revert(a.ReadMemory(uint32(stack[0]), uint32(stack[1])))
		}),
		"getReturnDataSize": bind(sigNone, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(len(a.Result.ReturnValue))
		}),
		"returnDataCopy": bind(i32_3, sigNone, func(a *host.Adapter, stack []uint64) {
			resultOffset, dataOffset, length := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			a.WriteMemory(resultOffset, sliceOrZero(a.Result.ReturnValue, dataOffset, length))
		}),
		"call": bind(i64_i32_4, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(doCall(a, host.CallKindCall, stack, true))
		}),
		"callCode": bind(i64_i32_4, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(doCall(a, host.CallKindCallCode, stack, true))
		}),
		"callDelegate": bind(i64_i32_3, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(doCall(a, host.CallKindDelegateCall, stack, false))
		}),
		"callStatic": bind(i64_i32_3, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(doCall(a, host.CallKindStaticCall, stack, false))
		}),
		"create": bind(i32_4, i32, func(a *host.Adapter, stack []uint64) {
			valueOffset, dataOffset, length, resultOffset := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			value := readU128LE(a, valueOffset)
			code := a.ReadMemory(dataOffset, length)
			addr, res, err := a.Context.Create(host.CreateRequest{Value: value, Code: code})
			if err != nil || !res.Success {
				stack[0] = 1
				return
			}
			writeAddress(a, resultOffset, addr)
			a.Result.ReturnValue = res.ReturnValue
			stack[0] = 0
		}),
		"selfDestruct": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Context.SelfDestruct(readAddress(a, uint32(stack[0])))
		}),
	}
}

// doCall decodes one of the four EEI call variants and dispatches through
// host.Context.Call, returning 0 on success and 1 on failure (the EEI
// result-code convention). callCode/call carry an explicit value argument;
// callDelegate/callStatic don't (delegatecall forwards the caller's value,
// staticcall forbids value transfer), so the stack layout differs by one
// i32 slot.
func doCall(a *host.Adapter, kind host.CallKind, stack []uint64, hasValue bool) int32 {
	gas := int64(stack[0])
	to := readAddress(a, uint32(stack[1]))

	var value *big.Int
	var dataOffset, length uint32
	if hasValue {
		value = readU128LE(a, uint32(stack[2]))
		dataOffset, length = uint32(stack[3]), uint32(stack[4])
	} else {
		value = big.NewInt(0)
		dataOffset, length = uint32(stack[2]), uint32(stack[3])
	}

	input := a.ReadMemory(dataOffset, length)
	res, err := a.Context.Call(host.CallRequest{Kind: kind, Gas: gas, To: to, Value: value, Input: input})
	if err != nil || !res.Success {
		return 1
	}
	a.Result.ReturnValue = res.ReturnValue
	return 0
}

// sliceOrZero returns data[offset:offset+length] zero-padded if the
// requested range runs past the end of data, matching the EEI convention
// that *Copy functions never trap on a short source buffer.
func sliceOrZero(data []byte, offset, length uint32) []byte {
	out := make([]byte, length)
	if uint64(offset) >= uint64(len(data)) {
		return out
	}
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}
