package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapReportAndAsReport(t *testing.T) {
	rep := New("astview", AST001, "translation unit rejected")
	err := WrapReport(rep)
	require.Error(t, err)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, AST001, got.Code)
	assert.Equal(t, "loopkernel.error/v1", got.Schema)
}

func TestAsReportMissesPlainErrors(t *testing.T) {
	_, ok := AsReport(fmt.Errorf("boom"))
	assert.False(t, ok)
}

func TestWrapReportNil(t *testing.T) {
	assert.Nil(t, WrapReport(nil))
}

func TestIsInfrastructural(t *testing.T) {
	assert.True(t, IsInfrastructural(ASM001))
	assert.True(t, IsInfrastructural(AST002))
	assert.False(t, IsInfrastructural(PRE001))
	assert.False(t, IsInfrastructural("NOPE"))
}

func TestGetErrorInfo(t *testing.T) {
	info, ok := GetErrorInfo(MIN001)
	require.True(t, ok)
	assert.Equal(t, "loopminer", info.Phase)
}
