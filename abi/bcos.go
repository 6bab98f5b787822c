package abi

import (
	"encoding/binary"

	"github.com/bcosnet/wasmhost/host"
)

// bcosEntries builds the 22-entry BEI allow-list. Two functions
// (getCallData, getReturnData) differ from their EEI equivalents by always
// copying the entire buffer rather than taking an explicit offset/length.
func bcosEntries() map[string]Entry {
	return map[string]Entry{
		"useGas": bind(i64, sigNone, func(a *host.Adapter, stack []uint64) {
			a.UseGas(int64(stack[0]))
		}),
		"finish": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Finish(a.ReadMemory(uint32(stack[0]), uint32(stack[1])))
		}),
		"getAddress": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Message.Destination)
		}),
		"getCallDataSize": bind(sigNone, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(len(a.Message.Input))
		}),
		"getCallData": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			a.WriteMemory(uint32(stack[0]), a.Message.Input)
		}),
		"setStorage": bind(i32_4, sigNone, func(a *host.Adapter, stack []uint64) {
			keyOffset, keyLength, valueOffset, valueLength := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			key := storageKey(a.ReadMemory(keyOffset, keyLength))
			value := storageKey(a.ReadMemory(valueOffset, valueLength))
			a.Context.SetStorage(key, value)
		}),
		"getStorage": bind(i32_3, i32, func(a *host.Adapter, stack []uint64) {
			keyOffset, keyLength, resultOffset := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			key := storageKey(a.ReadMemory(keyOffset, keyLength))
			value := a.Context.GetStorage(key)
			a.WriteMemory(resultOffset, value[:])
			stack[0] = uint64(len(value))
		}),
		"getCaller": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Message.Caller)
		}),
		"revert": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Revert(a.ReadMemory(uint32(stack[0]), uint32(stack[1])))
		}),
		"getTxOrigin": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			writeAddress(a, uint32(stack[0]), a.Context.GetTxOrigin())
		}),
		"getExternalCodeSize": bind(i32, i32, func(a *host.Adapter, stack []uint64) {
			addr := readAddress(a, uint32(stack[0]))
			stack[0] = uint64(len(a.Context.GetExternalCode(addr)))
		}),
		"log": bind(i32_4, sigNone, func(a *host.Adapter, stack []uint64) {
			dataOffset, dataLength, topicsOffset, topicsCount := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			entry := host.LogEntry{Data: a.ReadMemory(dataOffset, dataLength)}
			for i := uint32(0); i < topicsCount; i++ {
				entry.Topics = append(entry.Topics, readHash(a, topicsOffset+i*32))
			}
			a.Context.Log(entry)
		}),
		"getReturnDataSize": bind(sigNone, i32, func(a *host.Adapter, stack []uint64) {
			stack[0] = uint64(len(a.Result.ReturnValue))
		}),
		"getReturnData": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			a.WriteMemory(uint32(stack[0]), a.Result.ReturnValue)
		}),
		"call": bind(i64_i32_3, i32, func(a *host.Adapter, stack []uint64) {
			gas := int64(stack[0])
			to := readAddress(a, uint32(stack[1]))
			dataOffset, length := uint32(stack[2]), uint32(stack[3])
			input := a.ReadMemory(dataOffset, length)
			res, err := a.Context.Call(host.CallRequest{Kind: host.CallKindCall, Gas: gas, To: to, Input: input})
			if err != nil || !res.Success {
				stack[0] = 1
				return
			}
			a.Result.ReturnValue = res.ReturnValue
			stack[0] = 0
		}),
		"registerAsset": bind(i32_4_i64, i32, func(a *host.Adapter, stack []uint64) {
			nameOffset, nameLength := uint32(stack[0]), uint32(stack[1])
			fungible, depositoryOffset := uint32(stack[2]), uint32(stack[3])
			total := stack[4]
			name := readString(a, nameOffset, nameLength)
			depository := readAddress(a, depositoryOffset)
			ok := a.Context.RegisterAsset(name, fungible != 0, depository, total)
			stack[0] = boolToI32(ok)
		}),
		"issueFungibleAsset": bind(i32_3_i64, i32, func(a *host.Adapter, stack []uint64) {
			toOffset, nameOffset, nameLength := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			amount := stack[3]
			to := readAddress(a, toOffset)
			name := readString(a, nameOffset, nameLength)
			ok := a.Context.IssueFungibleAsset(to, name, amount)
			stack[0] = boolToI32(ok)
		}),
		"issueNotFungibleAsset": bind(i32_4, i64, func(a *host.Adapter, stack []uint64) {
			toOffset, nameOffset, nameLength, uriOffset := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			to := readAddress(a, toOffset)
			name := readString(a, nameOffset, nameLength)
			uri := cString(a, uriOffset)
			stack[0] = a.Context.IssueNotFungibleAsset(to, name, uri)
		}),
		"transferAsset": bind(i32_4_i64, i32, func(a *host.Adapter, stack []uint64) {
			toOffset, nameOffset, nameLength, fungible := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), stack[3]
			amountOrID := stack[4]
			to := readAddress(a, toOffset)
			name := readString(a, nameOffset, nameLength)
			ok := a.Context.TransferAsset(to, name, amountOrID, fungible != 0)
			stack[0] = boolToI32(ok)
		}),
		"getAssetBalance": bind(i32_3, i64, func(a *host.Adapter, stack []uint64) {
			addressOffset, nameOffset, nameLength := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
			addr := readAddress(a, addressOffset)
			name := readString(a, nameOffset, nameLength)
			stack[0] = a.Context.GetAssetBalance(addr, name)
		}),
		"getNotFungibleAssetIDs": bind(i32_4, i32, func(a *host.Adapter, stack []uint64) {
			addressOffset, nameOffset, nameLength, resultOffset := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
			addr := readAddress(a, addressOffset)
			name := readString(a, nameOffset, nameLength)
			ids := a.Context.GetNotFungibleAssetIDs(addr, name)
			buf := make([]byte, 8*len(ids))
			for i, id := range ids {
				binary.LittleEndian.PutUint64(buf[i*8:], id)
			}
			a.WriteMemory(resultOffset, buf)
			stack[0] = uint64(len(ids))
		}),
		"getNotFungibleAssetInfo": bind(i32_2_i64_i32, i32, func(a *host.Adapter, stack []uint64) {
			nameOffset, nameLength := uint32(stack[0]), uint32(stack[1])
			assetID := stack[2]
			resultOffset := uint32(stack[3])
			name := readString(a, nameOffset, nameLength)
			info := a.Context.GetNotFungibleAssetInfo(name, assetID)
			a.WriteMemory(resultOffset, []byte(info))
			stack[0] = uint64(len(info))
		}),
	}
}

func storageKey(data []byte) host.Hash {
	var h host.Hash
	copy(h[:], data)
	return h
}

func boolToI32(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// cString reads a NUL-terminated string starting at offset, bounded by one
// memory page, for the BEI functions that pass URIs without an explicit
// length.
func cString(a *host.Adapter, offset uint32) string {
	maxLen := uint32(65536)
	if size := a.Memory.Size(); offset < size && size-offset < maxLen {
		maxLen = size - offset
	}
	buf := a.ReadMemory(offset, maxLen)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
