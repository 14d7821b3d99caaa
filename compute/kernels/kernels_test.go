package kernels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiplyByScalarHost(t *testing.T) {
	got := MultiplyByScalarHost([]float32{1, 2, 3, 4, 5}, 5.4321)
	want := []float32{5.4321, 10.8642, 16.2963, 21.7284, 27.1605}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "result[%d]", i)
	}
	assert.Empty(t, MultiplyByScalarHost(nil, 2))
}

func TestEntryPointsDeclared(t *testing.T) {
	assert.True(t, strings.Contains(MultiplyByScalar, "fn "+MultiplyByScalarEntry+"("))
	assert.True(t, strings.Contains(Copy, "fn "+CopyEntry+"("))
}

func TestKernelsDispatchOneInvocationPerGroup(t *testing.T) {
	for name, src := range map[string]string{
		MultiplyByScalarEntry: MultiplyByScalar,
		CopyEntry:             Copy,
	} {
		assert.Contains(t, src, "@workgroup_size(1)", name)
		assert.NotContains(t, src, "arrayLength", name)
	}
}
