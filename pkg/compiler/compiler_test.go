package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/pkg/bytecode"
)

func TestCompileFullPipelineProducesBytecodeForAValidProgram(t *testing.T) {
	d := diag.NewCollector()
	result, err := Compile("x: int = 10\ny: int = 20\nz: int = x + y\n", Options{File: "scenario6.forge"}, d)
	require.NoError(t, err)
	require.False(t, d.HasErrors(), "unexpected diagnostics: %v", d.All())
	require.NotNil(t, result.Bytecode)

	require.Len(t, result.Bytecode.Constants, 2)
	assert.Equal(t, bytecode.Constant{Tag: bytecode.ConstInt, IntVal: 10}, result.Bytecode.Constants[0])
	assert.Equal(t, bytecode.Constant{Tag: bytecode.ConstInt, IntVal: 20}, result.Bytecode.Constants[1])
}

func TestCompileStopsAtParseStageWhenRequested(t *testing.T) {
	d := diag.NewCollector()
	result, err := Compile("x: int = 1\n", Options{File: "t.forge", Stop: StageParse}, d)
	require.NoError(t, err)
	require.NotNil(t, result.Program)
	assert.Nil(t, result.Bytecode)
}

func TestCompileReportsTypeErrorAndStopsBeforeBytecode(t *testing.T) {
	d := diag.NewCollector()
	result, err := Compile("x: float = 1.0\ny: int = x\n", Options{File: "t.forge"}, d)
	require.NoError(t, err)
	assert.True(t, d.HasErrors())
	assert.Nil(t, result.Bytecode)
}

func TestCompileReportsBorrowErrorAndStopsBeforeBytecode(t *testing.T) {
	d := diag.NewCollector()
	src := "a: int = 5\nr: &mut int = &mut a\nr2: &int = &a\n"
	result, err := Compile(src, Options{File: "t.forge"}, d)
	require.NoError(t, err)
	assert.True(t, d.HasErrors())
	assert.Nil(t, result.Bytecode)
}
