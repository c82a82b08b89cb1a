package playground

import (
	"fmt"
	"math"
)

// Metrics describes the size change of one transform.
type Metrics struct {
	InputBytes  int
	OutputBytes int
	// Savings is the percentage saved, rounded to one decimal. Nil when the
	// input is empty.
	Savings *float64
}

// ComputeMetrics measures settled and the output of r in UTF-8 bytes.
// A failed result counts as zero output bytes.
func ComputeMetrics(settled string, r Result) Metrics {
	m := Metrics{InputBytes: len(settled)}
	if !r.Failed {
		m.OutputBytes = len(r.Output)
	}
	if m.InputBytes > 0 {
		s := SavingsPercent(m.InputBytes, m.OutputBytes)
		m.Savings = &s
	}
	return m
}

// SavingsPercent returns (in-out)/in*100 rounded to one decimal. in must
// be positive.
func SavingsPercent(in, out int) float64 {
	return round1(float64(in-out) / float64(in) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// InputBadge renders the input size badge, e.g. "111 bytes".
func (m Metrics) InputBadge() string {
	return fmt.Sprintf("%d bytes", m.InputBytes)
}

// OutputBadge renders the output size badge, e.g. "101 bytes (-9.0%)".
// Empty input reports a saving of 0.
func (m Metrics) OutputBadge() string {
	if m.Savings == nil {
		return fmt.Sprintf("%d bytes (-0%%)", m.OutputBytes)
	}
	return fmt.Sprintf("%d bytes (-%.1f%%)", m.OutputBytes, *m.Savings)
}
