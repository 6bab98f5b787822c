// Package pool implements the module cache and instance pool: a
// process-wide, contract-address-keyed map to a per-contract pool of
// reusable instances, each reserved under compare-and-swap so at most one
// invocation ever holds an instance at a time. Locks nest in a fixed order
// — cache lock, then pool lock, then the per-instance idle flag — to avoid
// deadlocking across concurrent reservations.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/bcosnet/wasmhost/engine"
	"github.com/bcosnet/wasmhost/errors"
)

func logger() *zap.SugaredLogger { return engine.Logger().Sugar() }

// Address is the 20-byte contract address the cache keys on, treated as
// opaque bytes.
type Address = [20]byte

// Cache is the process-wide, grow-only module cache.
type Cache struct {
	rt *engine.Runtime

	mu    sync.RWMutex
	pools map[Address]*Pool
}

// NewCache builds an empty Cache bound to rt. One Cache is shared for the
// process lifetime of the engine.
func NewCache(rt *engine.Runtime) *Cache {
	return &Cache{rt: rt, pools: map[Address]*Pool{}}
}

// GetOrCompile returns the existing pool for addr if present, otherwise
// compiles code and installs a fresh pool. Two concurrent misses for the
// same fresh address may both compile; only one wins the write lock and the
// other's compiled module is closed and discarded — an accepted
// performance cost, not a correctness bug.
func (c *Cache) GetOrCompile(ctx context.Context, addr Address, code []byte) (*Pool, error) {
	c.mu.RLock()
	p, ok := c.pools[addr]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	compiled, err := c.rt.Compile(ctx, code)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.pools[addr]; ok {
		compiled.Close(ctx)
		return existing, nil
	}
	p = newPool(c.rt, addr, compiled)
	c.pools[addr] = p
	logger().Debugw("installed pool", "address", fmt.Sprintf("%x", addr))
	return p, nil
}

// Pool is the per-contract-address instance pool.
type Pool struct {
	rt       *engine.Runtime
	addr     Address
	compiled *engine.CompiledModule

	mu        sync.RWMutex
	instances []*pooledInstance
	nextSeq   atomic.Uint64
}

type pooledInstance struct {
	idle atomic.Bool
	inst *engine.Instance
}

func newPool(rt *engine.Runtime, addr Address, compiled *engine.CompiledModule) *Pool {
	return &Pool{rt: rt, addr: addr, compiled: compiled}
}

// Size reports the current instance count, for test instrumentation.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.instances)
}

// Reservation is the scoped, exclusive hold on one pooled instance. Release
// must run on every exit path, typically via defer; it unconditionally
// flips the instance back to idle and never destroys it.
type Reservation struct {
	pool *Pool
	pi   *pooledInstance
}

// Instance exposes the reserved engine.Instance to the invocation pipeline.
func (r *Reservation) Instance() *engine.Instance { return r.pi.inst }

// Release returns the instance to the idle set by marking it idle
// unconditionally. It does not track earlier calls: every call marks the
// instance idle, even if another reservation has claimed it since.
func (r *Reservation) Release() {
	r.pi.idle.Store(true)
}

// Reserve scans for an idle instance and claims it via compare-and-swap; if
// none is idle, it builds a new one, appends it under the pool's write
// lock, and claims it directly.
func (p *Pool) Reserve(ctx context.Context) (*Reservation, error) {
	p.mu.RLock()
	for _, pi := range p.instances {
		if pi.idle.CompareAndSwap(true, false) {
			p.mu.RUnlock()
			return &Reservation{pool: p, pi: pi}, nil
		}
	}
	p.mu.RUnlock()

	inst, err := p.rt.Instantiate(ctx, p.compiled, p.instanceName())
	if err != nil {
		return nil, err
	}
	pi := &pooledInstance{inst: inst}
	pi.idle.Store(false)

	p.mu.Lock()
	p.instances = append(p.instances, pi)
	size := len(p.instances)
	p.mu.Unlock()

	logger().Debugw("grew pool", "address", fmt.Sprintf("%x", p.addr), "size", size)

	return &Reservation{pool: p, pi: pi}, nil
}

func (p *Pool) instanceName() string {
	seq := p.nextSeq.Add(1)
	return fmt.Sprintf("%x-%d", p.addr, seq)
}

// Close tears down every instance and the compiled module. Called only at
// process shutdown; the cache itself has no explicit teardown requirement.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for _, pi := range p.instances {
		if err := pi.inst.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	if err := p.compiled.Close(ctx); err != nil && first == nil {
		first = err
	}
	if first != nil {
		return errors.New(errors.PhaseInstance, errors.KindInstantiation).Cause(first).Detail("close pool").Build()
	}
	return nil
}
