// Package kernels holds the WGSL sources dispatched by kernelview.
//
// Each source is passed explicitly to compute.Compile.
package kernels

// MultiplyByScalarEntry is the entry point of MultiplyByScalar.
const MultiplyByScalarEntry = "multiply_by_scalar"

// MultiplyByScalar computes dst[i] = src[i] * coeff for every i.
//
// Arguments: 0 = src (read-only f32 array), 1 = coeff (f32),
// 2 = dst (f32 array). Launch with work size len(src): one workgroup
// of one invocation per element, with no bounds guard in the shader.
const MultiplyByScalar = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<uniform> coeff: f32;
@group(0) @binding(2) var<storage, read_write> dst: array<f32>;

@compute @workgroup_size(1)
fn multiply_by_scalar(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    dst[i] = src[i] * coeff;
}
`

// CopyEntry is the entry point of Copy.
const CopyEntry = "copy_buffer"

// Copy is the identity kernel: dst[i] = src[i].
// Arguments: 0 = src (read-only u32 array), 1 = dst (u32 array).
// It moves raw 32-bit words so any Element round-trips bit for bit.
// Launch with work size len(src).
const Copy = `
@group(0) @binding(0) var<storage, read> src: array<u32>;
@group(0) @binding(1) var<storage, read_write> dst: array<u32>;

@compute @workgroup_size(1)
fn copy_buffer(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    dst[i] = src[i];
}
`

// MultiplyByScalarHost is the host reference for MultiplyByScalar. Each
// product is a single float32 multiply, as on the device.
func MultiplyByScalarHost(src []float32, coeff float32) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = v * coeff
	}
	return dst
}
