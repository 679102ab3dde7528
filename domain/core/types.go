package core

import (
	"math"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Sample is an ordered sequence of real-valued measurements.
// INVARIANTS:
// - Non-empty after construction
// - Every value finite (no NaN/Inf)
// Immutable: accessors return copies, never the backing slice.
type Sample struct {
	values []float64
}

// NewSample validates and wraps raw measurements into a Sample
func NewSample(values []float64) (Sample, error) {
	if len(values) == 0 {
		return Sample{}, NewDomainError("sample", "empty", "at least one measurement")
	}
	copied := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, NewDomainError("sample", v, "finite numeric values only")
		}
		copied[i] = v
	}
	return Sample{values: copied}, nil
}

// Len returns the number of measurements
func (s Sample) Len() int { return len(s.values) }

// Values returns a defensive copy of the measurements
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// AllPositive reports whether every measurement is strictly positive.
// Gates log, square-root and Box-Cox transform applicability.
func (s Sample) AllPositive() bool {
	for _, v := range s.values {
		if v <= 0 {
			return false
		}
	}
	return true
}

// ConfidenceReliabilitySpec is the (C, R) pair driving every demonstration
// calculation. Both strictly inside (0, 1). Immutable once constructed.
type ConfidenceReliabilitySpec struct {
	Confidence  float64 `json:"confidence"`
	Reliability float64 `json:"reliability"`
}

// NewConfidenceReliability validates and constructs a (C, R) spec
func NewConfidenceReliability(confidence, reliability float64) (ConfidenceReliabilitySpec, error) {
	if !(confidence > 0 && confidence < 1) {
		return ConfidenceReliabilitySpec{}, NewDomainError("confidence", confidence, "0 < C < 1")
	}
	if !(reliability > 0 && reliability < 1) {
		return ConfidenceReliabilitySpec{}, NewDomainError("reliability", reliability, "0 < R < 1")
	}
	return ConfidenceReliabilitySpec{Confidence: confidence, Reliability: reliability}, nil
}

// Sidedness selects a one- or two-sided statistical interval
type Sidedness string

const (
	OneSided Sidedness = "one"
	TwoSided Sidedness = "two"
)

// Valid reports whether the sidedness is a known value
func (s Sidedness) Valid() bool {
	return s == OneSided || s == TwoSided
}

// SpecLimits carries optional lower/upper specification limits.
// At least one bound must be present wherever a comparison is requested.
type SpecLimits struct {
	Lower *float64 `json:"lsl,omitempty"`
	Upper *float64 `json:"usl,omitempty"`
}

// HasAny reports whether at least one bound is supplied
func (l SpecLimits) HasAny() bool {
	return l.Lower != nil || l.Upper != nil
}

// Validate checks that supplied bounds are finite and ordered
func (l SpecLimits) Validate() error {
	if l.Lower != nil && (math.IsNaN(*l.Lower) || math.IsInf(*l.Lower, 0)) {
		return NewDomainError("lsl", *l.Lower, "finite value")
	}
	if l.Upper != nil && (math.IsNaN(*l.Upper) || math.IsInf(*l.Upper, 0)) {
		return NewDomainError("usl", *l.Upper, "finite value")
	}
	if l.Lower != nil && l.Upper != nil && *l.Lower >= *l.Upper {
		return NewDomainError("lsl/usl", *l.Lower, "LSL < USL")
	}
	return nil
}
