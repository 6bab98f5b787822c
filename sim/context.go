// Package sim implements an in-memory host.Context for exercising the
// engine outside a real blockchain node: a single account's storage, a
// fixed block header, and asset ledgers all kept in Go maps. It exists for
// cmd/wasmhost, not as a production host.
package sim

import (
	"math/big"
	"sync"

	"github.com/bcosnet/wasmhost/host"
)

// Block is the fixed block header every invocation observes.
type Block struct {
	Number     uint64
	Timestamp  uint64
	Coinbase   host.Address
	Difficulty *big.Int
	GasLimit   uint64
	Hashes     map[uint64]host.Hash
}

// Context is a single-process, single-account host.Context double backed
// by plain maps. The setters and every method that touches the storage,
// balance, code, log or asset maps take the same mutex, since nothing here
// is hot enough to need finer-grained locking. The block-header, gas-price,
// origin and hash-algorithm getters read their fields without taking it,
// so they are not synchronized with the With* setters.
type Context struct {
	mu sync.Mutex

	block    Block
	gasPrice *big.Int
	origin   host.Address
	hashAlgo host.HashAlgorithm

	storage   map[host.Address]map[host.Hash]host.Hash
	balances  map[host.Address]*big.Int
	code      map[host.Address][]byte
	logs      []host.LogEntry
	nextAsset uint64

	assets       map[string]assetInfo
	assetBal     map[host.Address]map[string]uint64
	nonFungible  map[host.Address]map[string][]uint64
	nfAssetInfo  map[string]map[uint64]string
}

type assetInfo struct {
	fungible   bool
	depository host.Address
	total      uint64
}

// New builds a Context with a zero-valued block header and the given hash
// algorithm; callers adjust the returned Context via the With* setters
// before running any invocation.
func New(hashAlgo host.HashAlgorithm) *Context {
	return &Context{
		block:       Block{Difficulty: big.NewInt(0), Hashes: map[uint64]host.Hash{}},
		gasPrice:    big.NewInt(0),
		hashAlgo:    hashAlgo,
		storage:     map[host.Address]map[host.Hash]host.Hash{},
		balances:    map[host.Address]*big.Int{},
		code:        map[host.Address][]byte{},
		assets:      map[string]assetInfo{},
		assetBal:    map[host.Address]map[string]uint64{},
		nonFungible: map[host.Address]map[string][]uint64{},
		nfAssetInfo: map[string]map[uint64]string{},
	}
}

// WithBlock replaces the fixed block header.
func (c *Context) WithBlock(b Block) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = b
	return c
}

// WithGasPrice sets the value GetTxGasPrice reports.
func (c *Context) WithGasPrice(price *big.Int) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gasPrice = price
	return c
}

// WithOrigin sets the value GetTxOrigin reports.
func (c *Context) WithOrigin(addr host.Address) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = addr
	return c
}

// SetBalance seeds addr's balance, for scripting a scenario before a call.
func (c *Context) SetBalance(addr host.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = amount
}

// SetCode seeds the code GetExternalCode returns for addr.
func (c *Context) SetCode(addr host.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[addr] = code
}

// Logs returns every entry recorded by Log so far, for CLI display.
func (c *Context) Logs() []host.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]host.LogEntry(nil), c.logs...)
}

func (c *Context) GetStorage(key host.Hash) host.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storageFor(c.origin)[key]
}

func (c *Context) SetStorage(key, value host.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storageFor(c.origin)[key] = value
}

func (c *Context) storageFor(addr host.Address) map[host.Hash]host.Hash {
	m, ok := c.storage[addr]
	if !ok {
		m = map[host.Hash]host.Hash{}
		c.storage[addr] = m
	}
	return m
}

func (c *Context) GetBalance(addr host.Address) *big.Int { return c.balanceOf(addr) }

func (c *Context) GetExternalBalance(addr host.Address) *big.Int { return c.balanceOf(addr) }

func (c *Context) balanceOf(addr host.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (c *Context) GetBlockHash(number uint64) host.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block.Hashes[number]
}

func (c *Context) GetBlockNumber() uint64 { return c.block.Number }
func (c *Context) GetBlockTimestamp() uint64 { return c.block.Timestamp }
func (c *Context) GetBlockCoinbase() host.Address { return c.block.Coinbase }
func (c *Context) GetBlockDifficulty() *big.Int {
	if c.block.Difficulty == nil {
		return big.NewInt(0)
	}
	return c.block.Difficulty
}
func (c *Context) GetBlockGasLimit() uint64 { return c.block.GasLimit }

func (c *Context) GetTxGasPrice() *big.Int { return c.gasPrice }
func (c *Context) GetTxOrigin() host.Address { return c.origin }

func (c *Context) GetExternalCode(addr host.Address) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code[addr]
}

// Call is not wired to a real nested dispatcher in this single-process
// simulator: it always reports a successful no-op call with no return
// data, which is enough to exercise the EEI call opcodes without a second
// engine instance to recurse into.
func (c *Context) Call(req host.CallRequest) (host.CallResult, error) {
	return host.CallResult{Success: true, GasLeft: req.Gas}, nil
}

// Create mirrors Call: it reports success and hands back a synthetic
// address derived from an incrementing counter, without actually deploying
// anything.
func (c *Context) Create(req host.CreateRequest) (host.Address, host.CallResult, error) {
	c.mu.Lock()
	c.nextAsset++
	var addr host.Address
	addr[19] = byte(c.nextAsset)
	c.mu.Unlock()
	return addr, host.CallResult{Success: true}, nil
}

func (c *Context) SelfDestruct(host.Address) {}

func (c *Context) Log(entry host.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, entry)
}

func (c *Context) RegisterAsset(name string, fungible bool, depository host.Address, total uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.assets[name]; exists {
		return false
	}
	c.assets[name] = assetInfo{fungible: fungible, depository: depository, total: total}
	return true
}

func (c *Context) IssueFungibleAsset(to host.Address, name string, amount uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.assets[name]; !ok {
		return false
	}
	bal, ok := c.assetBal[to]
	if !ok {
		bal = map[string]uint64{}
		c.assetBal[to] = bal
	}
	bal[name] += amount
	return true
}

func (c *Context) IssueNotFungibleAsset(to host.Address, name string, uri string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.assets[name]; !ok {
		return 0
	}
	c.nextAsset++
	id := c.nextAsset
	ids, ok := c.nonFungible[to]
	if !ok {
		ids = map[string][]uint64{}
		c.nonFungible[to] = ids
	}
	ids[name] = append(ids[name], id)
	info, ok := c.nfAssetInfo[name]
	if !ok {
		info = map[uint64]string{}
		c.nfAssetInfo[name] = info
	}
	info[id] = uri
	return id
}

func (c *Context) TransferAsset(to host.Address, name string, amountOrID uint64, fungible bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fungible {
		bal, ok := c.assetBal[to]
		if !ok {
			bal = map[string]uint64{}
			c.assetBal[to] = bal
		}
		bal[name] += amountOrID
		return true
	}
	ids, ok := c.nonFungible[to]
	if !ok {
		ids = map[string][]uint64{}
		c.nonFungible[to] = ids
	}
	ids[name] = append(ids[name], amountOrID)
	return true
}

func (c *Context) GetAssetBalance(addr host.Address, name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assetBal[addr][name]
}

func (c *Context) GetNotFungibleAssetIDs(addr host.Address, name string) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint64(nil), c.nonFungible[addr][name]...)
}

func (c *Context) GetNotFungibleAssetInfo(name string, assetID uint64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nfAssetInfo[name][assetID]
}

func (c *Context) ActiveHashAlgorithm() host.HashAlgorithm { return c.hashAlgo }
