// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Element is the set of host types a device buffer or scalar argument can hold.
// All of them are 4 bytes wide and map to WGSL f32, i32 and u32.
type Element interface {
	float32 | int32 | uint32
}

// ElemType names the element type of a buffer or argument slot.
type ElemType uint8

const (
	// ElemInvalid is the zero value.
	ElemInvalid ElemType = iota
	// ElemFloat32 is WGSL f32.
	ElemFloat32
	// ElemInt32 is WGSL i32.
	ElemInt32
	// ElemUint32 is WGSL u32.
	ElemUint32
)

// elemSize is the byte width shared by every Element.
const elemSize = 4

// String returns the WGSL spelling of the type.
func (e ElemType) String() string {
	switch e {
	case ElemFloat32:
		return "f32"
	case ElemInt32:
		return "i32"
	case ElemUint32:
		return "u32"
	default:
		return fmt.Sprintf("ElemType(%d)", uint8(e))
	}
}

func elemTypeOf[T Element]() ElemType {
	var zero T
	return elemTypeOfValue(zero)
}

// elemTypeOfValue reports the ElemType of a scalar value, or ElemInvalid.
func elemTypeOfValue(v any) ElemType {
	switch v.(type) {
	case float32:
		return ElemFloat32
	case int32:
		return ElemInt32
	case uint32:
		return ElemUint32
	default:
		return ElemInvalid
	}
}

// encodeElements packs host elements in device (little-endian) order.
func encodeElements[T Element](src []T) []byte {
	out := make([]byte, 0, len(src)*elemSize)
	out, err := binary.Append(out, binary.LittleEndian, src)
	if err != nil {
		// Element types are always fixed-size.
		panic(err)
	}
	return out
}

// decodeElements unpacks n elements from device bytes.
func decodeElements[T Element](data []byte, n int) ([]T, error) {
	if len(data) < n*elemSize {
		return nil, fmt.Errorf("%w: got %d bytes for %d elements", ErrTransferFailed, len(data), n)
	}
	out := make([]T, n)
	if _, err := binary.Decode(data[:n*elemSize], binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return out, nil
}

// uniformSize is the byte size of the buffer backing a scalar argument.
// Uniform bindings are padded to a 16-byte block.
const uniformSize = 16

// encodeScalar packs a scalar argument into a zero-padded uniform block.
func encodeScalar(v any) ([]byte, bool) {
	buf := make([]byte, uniformSize)
	switch x := v.(type) {
	case float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
	case int32:
		binary.LittleEndian.PutUint32(buf, uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(buf, x)
	default:
		return nil, false
	}
	return buf, true
}
