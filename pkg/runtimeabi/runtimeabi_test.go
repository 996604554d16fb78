package runtimeabi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestEveryABIFunctionPanicsWithoutANativeBackendLinked(t *testing.T) {
	assert.Panics(t, func() { SmartPtrMalloc(8) })
	assert.Panics(t, func() { UniquePtrRelease(nil) })
	assert.Panics(t, func() { SharedPtrRetain(nil) })
	assert.Panics(t, func() { SharedPtrRelease(nil) })
	assert.Panics(t, func() { SharedPtrUseCount(nil) })
	assert.Panics(t, func() { WeakPtrRelease(nil) })
}

// TestRecordLayoutsMatchTheDocumentedFixedOffsets pins down spec.md §6:
// "the first field of unique_ptr and the second field of shared_ptr are
// the payload data pointer; generated code reads and writes them at
// those fixed offsets."
func TestRecordLayoutsMatchTheDocumentedFixedOffsets(t *testing.T) {
	var u UniquePtrRecord
	assert.Equal(t, uintptr(0), unsafe.Offsetof(u.Data))

	var s SharedPtrRecord
	assert.Greater(t, unsafe.Offsetof(s.Data), uintptr(0), "Data must not be the first field of SharedPtrRecord")
}
