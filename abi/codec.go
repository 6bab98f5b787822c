package abi

import (
	"math/big"

	"github.com/bcosnet/wasmhost/host"
)

// readAddress/writeAddress move a 20-byte account address between guest
// memory and the Address value host.Context operates on.
func readAddress(a *host.Adapter, offset uint32) host.Address {
	var addr host.Address
	copy(addr[:], a.ReadMemory(offset, 20))
	return addr
}

func writeAddress(a *host.Adapter, offset uint32, addr host.Address) {
	a.WriteMemory(offset, addr[:])
}

func readHash(a *host.Adapter, offset uint32) host.Hash {
	var h host.Hash
	copy(h[:], a.ReadMemory(offset, 32))
	return h
}

func writeHash(a *host.Adapter, offset uint32, h host.Hash) {
	a.WriteMemory(offset, h[:])
}

// readU128LE/writeU128LE move a 128-bit value (balance, call value, gas
// price, block difficulty) between guest memory and a *big.Int, using the
// little-endian byte order the EEI convention (and the wasmer-cpp host
// before it) specifies for these fields.
func readU128LE(a *host.Adapter, offset uint32) *big.Int {
	buf := a.ReadMemory(offset, 16)
	be := make([]byte, 16)
	for i, b := range buf {
		be[15-i] = b
	}
	return new(big.Int).SetBytes(be)
}

func writeU128LE(a *host.Adapter, offset uint32, v *big.Int) {
	be := v.Bytes()
	le := make([]byte, 16)
	for i := 0; i < len(be) && i < 16; i++ {
		le[i] = be[len(be)-1-i]
	}
	a.WriteMemory(offset, le)
}

func readString(a *host.Adapter, offset, length uint32) string {
	return string(a.ReadMemory(offset, length))
}
