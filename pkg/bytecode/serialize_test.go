package bytecode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTripsProgram(t *testing.T) {
	program := &CompiledProgram{
		Instructions: []Instruction{
			{Op: LOAD_INT, Operand: 0},
			{Op: LOAD_INT, Operand: 1},
			{Op: ADD_INT, Operand: 0},
			{Op: LOAD_STRING, Operand: 0},
			{Op: HALT, Operand: 0},
		},
		Constants: []Constant{
			{Tag: ConstInt, IntVal: 10},
			{Tag: ConstFloat, FloatVal: 1.5},
			{Tag: ConstDouble, DoubleVal: 2.25},
			{Tag: ConstBool, BoolVal: true},
			{Tag: ConstStringID, StringID: 0},
		},
		Strings: []string{"hello"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, program))

	decoded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, program, decoded)
}

// TestDisassembleMatchesGoldenListing diffs a disassembly against a
// known-good listing the way termfx-morfx's own golden-file suite
// compares output through go-difflib rather than a plain
// string-equality assert, so a mismatch renders as a unified diff
// instead of two opaque blobs.
func TestDisassembleMatchesGoldenListing(t *testing.T) {
	program := &CompiledProgram{
		Instructions: []Instruction{
			{Op: LOAD_INT, Operand: 0},
			{Op: STORE_LOCAL, Operand: 0},
			{Op: LOAD_INT, Operand: 1},
			{Op: STORE_LOCAL, Operand: 1},
			{Op: LOAD_LOCAL, Operand: 0},
			{Op: LOAD_LOCAL, Operand: 1},
			{Op: ADD_INT, Operand: 0},
			{Op: STORE_LOCAL, Operand: 2},
			{Op: HALT, Operand: 0},
		},
		Constants: []Constant{
			{Tag: ConstInt, IntVal: 10},
			{Tag: ConstInt, IntVal: 20},
		},
	}

	golden := strings.Join([]string{
		"0000 LOAD_INT         0",
		"0001 STORE_LOCAL      0",
		"0002 LOAD_INT         1",
		"0003 STORE_LOCAL      1",
		"0004 LOAD_LOCAL       0",
		"0005 LOAD_LOCAL       1",
		"0006 ADD_INT          0",
		"0007 STORE_LOCAL      2",
		"0008 HALT             0",
		"",
	}, "\n")

	got := Disassemble(program)
	if got != golden {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(golden),
			B:        difflib.SplitLines(got),
			FromFile: "golden",
			ToFile:   "got",
			Context:  2,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("disassembly mismatch:\n%s", text)
	}
}

func TestBytesProducesLittleEndianInstructionCountPrefix(t *testing.T) {
	program := &CompiledProgram{Instructions: []Instruction{{Op: HALT}}}
	data, err := Bytes(program)
	require.NoError(t, err)
	require.True(t, len(data) >= 4)
	assert.Equal(t, []byte{1, 0, 0, 0}, data[:4])
}
