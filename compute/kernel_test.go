// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multiplySlots mirrors the reflected layout of kernels.MultiplyByScalar.
func multiplySlots() []Slot {
	return []Slot{
		{Index: 0, Binding: 0, Name: "src", Kind: SlotInput, Elem: ElemFloat32},
		{Index: 1, Binding: 1, Name: "coeff", Kind: SlotScalar, Elem: ElemFloat32},
		{Index: 2, Binding: 2, Name: "dst", Kind: SlotOutput, Elem: ElemFloat32},
	}
}

// detachedKernel builds a kernel with no device objects. Binding and
// validation never touch the device.
func detachedKernel(s *Session) *Kernel {
	return newKernel(&Program{s: s}, "multiply_by_scalar", [3]uint32{64, 0, 0}, multiplySlots())
}

func TestSlotAccept(t *testing.T) {
	s := &Session{}
	roF := &Buffer[float32]{s: s, n: 5, mode: ReadOnly, name: "ro"}
	woF := &Buffer[float32]{s: s, n: 5, mode: WriteOnly, name: "wo"}
	rwF := &Buffer[float32]{s: s, n: 5, mode: ReadWrite, name: "rw"}
	roU := &Buffer[uint32]{s: s, n: 5, mode: ReadOnly, name: "ro-u32"}
	released := &Buffer[float32]{s: s, n: 5, mode: ReadWrite, name: "gone", released: true}
	var nilBuf *Buffer[float32]

	slots := multiplySlots()
	in, scalar, out := slots[0], slots[1], slots[2]

	tests := []struct {
		name    string
		slot    Slot
		value   any
		wantErr error
	}{
		{"input takes read-only", in, roF, nil},
		{"input takes read-write", in, rwF, nil},
		{"input rejects write-only", in, woF, ErrArgumentType},
		{"input rejects wrong element", in, roU, ErrArgumentType},
		{"input rejects scalar", in, float32(1), ErrArgumentType},
		{"output takes write-only", out, woF, nil},
		{"output takes read-write", out, rwF, nil},
		{"output rejects read-only", out, roF, ErrArgumentType},
		{"scalar takes float32", scalar, float32(5.4321), nil},
		{"scalar rejects float64", scalar, 5.4321, ErrArgumentType},
		{"scalar rejects int32", scalar, int32(5), ErrArgumentType},
		{"scalar rejects buffer", scalar, roF, ErrArgumentType},
		{"nil value", in, nil, ErrArgumentType},
		{"typed nil buffer", in, nilBuf, ErrArgumentType},
		{"released buffer", out, released, ErrReleased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := tt.slot.accept(tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				assert.False(t, arg.bound())
				return
			}
			require.NoError(t, err)
			assert.True(t, arg.bound())
		})
	}
}

func TestSlotAcceptFixedLength(t *testing.T) {
	s := &Session{}
	slot := Slot{Index: 0, Name: "lut", Kind: SlotInput, Elem: ElemUint32, Len: 8}

	_, err := slot.accept(&Buffer[uint32]{s: s, n: 4, mode: ReadOnly, name: "short"})
	assert.ErrorIs(t, err, ErrArgumentType)

	_, err = slot.accept(&Buffer[uint32]{s: s, n: 8, mode: ReadOnly, name: "exact"})
	assert.NoError(t, err)
}

func TestKernelSetArg(t *testing.T) {
	s := &Session{}
	k := detachedKernel(s)
	src := &Buffer[float32]{s: s, n: 5, mode: ReadOnly, name: "src"}
	dst := &Buffer[float32]{s: s, n: 5, mode: WriteOnly, name: "dst"}

	assert.Equal(t, 0, k.unbound())

	require.NoError(t, k.SetArg(0, src))
	require.NoError(t, k.SetArg(2, dst))
	assert.Equal(t, 1, k.unbound(), "scalar slot still unbound")

	require.NoError(t, k.SetArg(1, float32(1)))
	require.NoError(t, k.SetArg(1, float32(5.4321)))
	assert.Equal(t, -1, k.unbound())

	want, _ := encodeScalar(float32(5.4321))
	assert.Equal(t, want, k.args[1].scalar, "last bound value wins")
}

func TestKernelSetArgErrors(t *testing.T) {
	s := &Session{}
	k := detachedKernel(s)

	assert.ErrorIs(t, k.SetArg(-1, float32(1)), ErrArgumentType)
	assert.ErrorIs(t, k.SetArg(3, float32(1)), ErrArgumentType)

	other := &Session{}
	foreign := &Buffer[float32]{s: other, n: 5, mode: ReadOnly, name: "foreign"}
	assert.ErrorIs(t, k.SetArg(0, foreign), ErrArgumentType)

	// A failed bind leaves the previous value in place.
	src := &Buffer[float32]{s: s, n: 5, mode: ReadOnly, name: "src"}
	require.NoError(t, k.SetArg(0, src))
	assert.Error(t, k.SetArg(0, float32(2)))
	assert.Equal(t, bufferArg(src), k.args[0].buf)

	k.released = true
	assert.ErrorIs(t, k.SetArg(0, src), ErrReleased)
}

func TestKernelOverrun(t *testing.T) {
	s := &Session{}
	k := detachedKernel(s)
	src := &Buffer[float32]{s: s, n: 5, mode: ReadOnly, name: "src"}
	dst := &Buffer[float32]{s: s, n: 3, mode: WriteOnly, name: "dst"}
	require.NoError(t, k.SetArg(0, src))
	require.NoError(t, k.SetArg(1, float32(2)))
	require.NoError(t, k.SetArg(2, dst))

	assert.Equal(t, -1, k.overrun(3))
	assert.Equal(t, 2, k.overrun(4), "dst is the shortest buffer")
	assert.Equal(t, 0, k.overrun(6))
}

func TestKernelSlotsIsCopy(t *testing.T) {
	k := detachedKernel(&Session{})
	slots := k.Slots()
	slots[0].Name = "mutated"
	assert.Equal(t, "src", k.slots[0].Name)
	assert.Equal(t, [3]uint32{64, 1, 1}, k.WorkgroupSize())
	assert.Equal(t, "multiply_by_scalar", k.Name())
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		n    int
		size uint32
		want uint32
	}{
		{1, 64, 1},
		{5, 64, 1},
		{64, 64, 1},
		{65, 64, 2},
		{1000, 64, 16},
		{5, 1, 5},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := workgroupCount(tt.n, tt.size); got != tt.want {
			t.Errorf("workgroupCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}
