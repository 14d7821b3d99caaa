// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package app

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat prints f in its shortest round-trip form, keeping a ".0" on
// integral values so 1 prints as "1.0". Magnitudes outside [1e-5, 1e16)
// use exponent notation.
func FormatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "NaN"
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	}

	abs := math.Abs(float64(f))
	format := byte('f')
	if abs != 0 && (abs < 1e-5 || abs >= 1e16) {
		format = 'e'
	}
	s := strconv.FormatFloat(float64(f), format, -1, 32)
	if format == 'e' {
		return strings.Replace(s, "e+", "e", 1)
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatSlice prints xs as "[a, b, c]".
func FormatSlice(xs []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatFloat(x))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatReport renders the three console lines of a multiply run.
func FormatReport(src []float32, coeff float32, result []float32) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(FormatSlice(src))
	b.WriteString("\n* ")
	b.WriteString(FormatFloat(coeff))
	b.WriteString("\n= ")
	b.WriteString(FormatSlice(result))
	b.WriteByte('\n')
	return b.String()
}
