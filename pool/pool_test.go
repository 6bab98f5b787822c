package pool

import (
	"context"
	"testing"

	"github.com/bcosnet/wasmhost/engine"
	"github.com/bcosnet/wasmhost/wat"
)

func compile(t *testing.T, src string) []byte {
	t.Helper()
	code, err := wat.Compile(src)
	if err != nil {
		t.Fatalf("compile WAT fixture: %v", err)
	}
	return code
}

const fixtureModule = `(module
	(memory (export "memory") 1)
	(func (export "hash_type") (result i32) (i32.const 0))
	(func (export "deploy"))
	(func (export "main"))
)`

func newTestCache(t *testing.T) (*Cache, context.Context) {
	t.Helper()
	ctx := context.Background()
	rt, err := engine.New(ctx, engine.Config{})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })
	return NewCache(rt), ctx
}

func addr(b byte) Address {
	var a Address
	a[19] = b
	return a
}

func TestGetOrCompile_SameAddressReturnsSamePool(t *testing.T) {
	c, ctx := newTestCache(t)
	code := compile(t, fixtureModule)
	a := addr(1)

	p1, err := c.GetOrCompile(ctx, a, code)
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	p2, err := c.GetOrCompile(ctx, a, code)
	if err != nil {
		t.Fatalf("GetOrCompile (second): %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected the same *Pool for a repeated address")
	}
}

func TestGetOrCompile_DifferentAddressesGetDifferentPools(t *testing.T) {
	c, ctx := newTestCache(t)
	code := compile(t, fixtureModule)

	p1, err := c.GetOrCompile(ctx, addr(1), code)
	if err != nil {
		t.Fatalf("GetOrCompile 1: %v", err)
	}
	p2, err := c.GetOrCompile(ctx, addr(2), code)
	if err != nil {
		t.Fatalf("GetOrCompile 2: %v", err)
	}
	if p1 == p2 {
		t.Fatal("expected distinct pools for distinct addresses")
	}
}

func TestReserve_GrowsPoolWhenNoneIdle(t *testing.T) {
	c, ctx := newTestCache(t)
	p, err := c.GetOrCompile(ctx, addr(3), compile(t, fixtureModule))
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}

	r1, err := p.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve 1: %v", err)
	}
	if p.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", p.Size())
	}

	r2, err := p.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve 2: %v", err)
	}
	if p.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 (no idle instance to reuse)", p.Size())
	}
	if r1.Instance() == r2.Instance() {
		t.Fatal("expected two distinct concurrently-held instances")
	}
}

func TestReserve_ReusesReleasedInstance(t *testing.T) {
	c, ctx := newTestCache(t)
	p, err := c.GetOrCompile(ctx, addr(4), compile(t, fixtureModule))
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}

	r1, err := p.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve 1: %v", err)
	}
	first := r1.Instance()
	r1.Release()

	r2, err := p.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve 2: %v", err)
	}
	if p.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (the released instance should be reused)", p.Size())
	}
	if r2.Instance() != first {
		t.Fatal("expected Reserve to hand back the released instance rather than build a new one")
	}
}

func TestPool_Close_ClosesEveryInstance(t *testing.T) {
	c, ctx := newTestCache(t)
	p, err := c.GetOrCompile(ctx, addr(5), compile(t, fixtureModule))
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	r, err := p.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	r.Release()

	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
