// Package host defines the boundary between the WASM host engine and the
// enclosing blockchain node: the capability set a contract invocation can
// reach (Context) and the per-invocation carrier that host-import thunks
// operate on (Adapter).
package host

import "math/big"

// Address is a 20-byte account address, treated as opaque bytes by the
// engine itself.
type Address [20]byte

// Hash is a 32-byte value, used for storage keys/values and block hashes.
type Hash [32]byte

// HashAlgorithm is the hash function a deployed contract's hash_type()
// export must agree with.
type HashAlgorithm int32

const (
	HashKeccak256 HashAlgorithm = 0
	HashSM3       HashAlgorithm = 1
)

// MessageKind distinguishes contract creation from an ordinary call.
type MessageKind int

const (
	MessageCall MessageKind = iota
	MessageCreate
)

// CallKind distinguishes the EEI call variants (call/callCode/callDelegate/
// callStatic), which share one dispatch through HostContext.Call and differ
// only in how the callee interprets caller identity, value transfer, and
// state mutability.
type CallKind int

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
)

// Message identifies one invocation: who is calling, what is being called,
// with what value and input, and how much gas it was given.
type Message struct {
	Kind        MessageKind
	Destination Address
	Caller      Address
	Value       *big.Int
	Input       []byte
	Gas         int64
}

// CallRequest is the argument to HostContext.Call, covering all four EEI
// call variants and the single BEI call.
type CallRequest struct {
	Kind  CallKind
	Gas   int64
	To    Address
	Value *big.Int
	Input []byte
}

// CallResult is the outcome of a nested call or create.
type CallResult struct {
	Success     bool
	GasLeft     int64
	ReturnValue []byte
}

// CreateRequest is the argument to HostContext.Create.
type CreateRequest struct {
	Value *big.Int
	Code  []byte
}

// LogEntry is one EEI/BEI log emission.
type LogEntry struct {
	Topics [][32]byte
	Data   []byte
}

// Context is the capability set the enclosing blockchain node exposes to a
// contract invocation. It is intentionally non-exhaustive in the asset
// operations' exact semantics — those belong to the host, not the engine.
type Context interface {
	GetStorage(key Hash) Hash
	SetStorage(key, value Hash)

	GetBalance(addr Address) *big.Int
	GetExternalBalance(addr Address) *big.Int

	GetBlockHash(number uint64) Hash
	GetBlockNumber() uint64
	GetBlockTimestamp() uint64
	GetBlockCoinbase() Address
	GetBlockDifficulty() *big.Int
	GetBlockGasLimit() uint64

	GetTxGasPrice() *big.Int
	GetTxOrigin() Address

	GetExternalCode(addr Address) []byte

	Call(req CallRequest) (CallResult, error)
	Create(req CreateRequest) (Address, CallResult, error)
	SelfDestruct(beneficiary Address)

	Log(entry LogEntry)

	RegisterAsset(name string, fungible bool, depository Address, total uint64) bool
	IssueFungibleAsset(to Address, name string, amount uint64) bool
	IssueNotFungibleAsset(to Address, name string, uri string) uint64
	TransferAsset(to Address, name string, amountOrID uint64, fungible bool) bool
	GetAssetBalance(addr Address, name string) uint64
	GetNotFungibleAssetIDs(addr Address, name string) []uint64
	GetNotFungibleAssetInfo(name string, assetID uint64) string

	ActiveHashAlgorithm() HashAlgorithm
}
