// Package attribute computes binomial-based sample sizes for pass/fail
// demonstration testing.
package attribute

import (
	"math"

	"golang.org/x/sync/errgroup"

	"vvengine/adapters/stats/distmath"
	"vvengine/domain/core"
	"vvengine/domain/engine"
)

// SweepFailureCeiling is the inclusive upper c of a sensitivity sweep (c = 0..3).
const SweepFailureCeiling = 3

// boundEscalationLimit caps the binomial search upper bound. The bound starts
// at 10x the zero-failure estimate and escalates by decades; a plan needing
// more than this many units is a convergence failure, not a silent cap.
const boundEscalationLimit = 100_000_000

// Sizer computes attribute (pass/fail) sample sizes
type Sizer struct {
	dist *distmath.Distributions
}

// NewSizer creates a new attribute sample sizer
func NewSizer() *Sizer {
	return &Sizer{dist: distmath.New()}
}

// SampleSize returns the smallest n demonstrating reliability R with
// confidence C while allowing c failures.
//
// c = 0 uses the Success Run Theorem n = ceil(ln(1-C)/ln(R)). c > 0 finds the
// smallest n with BinomialCDF(c; n, 1-R) <= 1-C by binary search seeded at
// the c = 0 solution (the condition is monotone in n).
func (s *Sizer) SampleSize(spec core.ConfidenceReliabilitySpec, c int) (engine.AttributeResult, error) {
	if c < 0 {
		return engine.AttributeResult{}, core.NewDomainError("allowable_failures", c, "c >= 0")
	}

	n0 := successRunSize(spec)
	if c == 0 {
		return engine.AttributeResult{
			AllowableFailures: 0,
			SampleSize:        n0,
			Confidence:        spec.Confidence,
			Reliability:       spec.Reliability,
			Method:            engine.MethodSuccessRun,
		}, nil
	}

	n, err := s.binomialSearch(spec, c, n0)
	if err != nil {
		return engine.AttributeResult{}, err
	}
	return engine.AttributeResult{
		AllowableFailures: c,
		SampleSize:        n,
		Confidence:        spec.Confidence,
		Reliability:       spec.Reliability,
		Method:            engine.MethodBinomialSearch,
	}, nil
}

// SensitivitySweep computes independent results for c = 0..3. The four
// calculations run concurrently; results land by index so output order is
// deterministic.
func (s *Sizer) SensitivitySweep(spec core.ConfidenceReliabilitySpec) ([]engine.AttributeResult, error) {
	results := make([]engine.AttributeResult, SweepFailureCeiling+1)

	var g errgroup.Group
	for c := 0; c <= SweepFailureCeiling; c++ {
		c := c
		g.Go(func() error {
			res, err := s.SampleSize(spec, c)
			if err != nil {
				return err
			}
			results[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// successRunSize applies the Success Run Theorem. Valid by construction:
// 0 < R < 1 guarantees ln(R) < 0.
func successRunSize(spec core.ConfidenceReliabilitySpec) int {
	n := math.Ceil(math.Log(1-spec.Confidence) / math.Log(spec.Reliability))
	if n < 1 {
		n = 1
	}
	return int(n)
}

// binomialSearch finds the smallest n >= lower with P(X <= c) <= 1-C for
// X ~ Binomial(n, 1-R).
func (s *Sizer) binomialSearch(spec core.ConfidenceReliabilitySpec, c, lower int) (int, error) {
	pFail := 1 - spec.Reliability
	target := 1 - spec.Confidence

	meets := func(n int) (bool, error) {
		cdf, err := s.dist.BinomialCDF(c, n, pFail)
		if err != nil {
			return false, err
		}
		return cdf <= target, nil
	}

	// Allowing failures never shrinks the plan, so the c = 0 solution is a
	// valid lower bound. Escalate the upper bound by decades if 10x the
	// estimate is still too small.
	lo := lower
	hi := 10 * lower
	for {
		ok, err := meets(hi)
		if err != nil {
			return 0, err
		}
		if ok {
			break
		}
		if hi >= boundEscalationLimit {
			return 0, core.NewConvergenceError("binomial sample-size search", boundEscalationLimit, target)
		}
		lo = hi
		hi *= 10
	}

	for lo < hi {
		mid := lo + (hi-lo)/2
		ok, err := meets(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return hi, nil
}
