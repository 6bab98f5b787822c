package trap

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil is success", nil, StatusSuccess},
		{"out of gas exact", errors.New("Out of gas."), StatusOutOfGas},
		{"stack exhausted", errors.New("wasm error: stack exhausted"), StatusStackExhausted},
		{"unreachable", errors.New("wasm error: unreachable"), StatusUnreachable},
		{"memory access", errors.New("out of bounds memory access"), StatusInvalidMemoryAccess},
		{"revert", errors.New("wasm error: revert"), StatusRevert},
		{"finish", errors.New("wasm error: finish"), StatusSuccess},
		{"unknown", errors.New("divide by zero"), StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.err); got != tt.want {
				t.Errorf("Decode(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDecode_FirstMatchWins(t *testing.T) {
	// A message containing both "unreachable" and "memory access" should
	// resolve to whichever the table lists first.
	err := errors.New("unreachable executed near memory access fault")
	if got := Decode(err); got != StatusUnreachable {
		t.Errorf("Decode() = %v, want %v", got, StatusUnreachable)
	}
}
