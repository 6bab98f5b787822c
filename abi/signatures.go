package abi

import "github.com/tetratelabs/wazero/api"

// Shorthand value-type tuples: a handful of shapes cover every EEI/BEI
// function, so each is a named slice rather than spelled out per entry.
var (
	sigNone = []api.ValueType{}

	i32  = []api.ValueType{api.ValueTypeI32}
	i64  = []api.ValueType{api.ValueTypeI64}
	i32_2 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	i32_3 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	i32_4 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	i32_5 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	i32_7 = []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32,
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32,
	}

	i64_i32   = []api.ValueType{api.ValueTypeI64, api.ValueTypeI32}
	i32_i64   = []api.ValueType{api.ValueTypeI32, api.ValueTypeI64}
	i32_2_i64 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64}
	i32_3_i64 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64}
	i32_4_i64 = []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64,
	}
	i64_i32_3 = []api.ValueType{api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	i64_i32_4 = []api.ValueType{
		api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32,
	}
	i32_2_i64_i32 = []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32,
	}
)
