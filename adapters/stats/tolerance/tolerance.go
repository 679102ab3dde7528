// Package tolerance computes one- and two-sided statistical tolerance
// factors, tolerance limits, spec-limit comparison and process performance.
package tolerance

import (
	"math"

	"github.com/montanaflynn/stats"

	"vvengine/adapters/stats/distmath"
	"vvengine/domain/core"
	"vvengine/domain/engine"
)

// Calculator computes tolerance factors and limits
type Calculator struct {
	dist *distmath.Distributions
}

// NewCalculator creates a new tolerance calculator
func NewCalculator() *Calculator {
	return &Calculator{dist: distmath.New()}
}

// OneSidedFactor computes the exact one-sided tolerance factor
// k1 = t'(C; n-1, delta) / sqrt(n) with non-centrality delta = z_R * sqrt(n).
func (c *Calculator) OneSidedFactor(n int, spec core.ConfidenceReliabilitySpec) (engine.ToleranceFactorResult, error) {
	if n < 2 {
		return engine.ToleranceFactorResult{}, core.NewDomainError("n", n, "n >= 2")
	}

	zR, err := c.dist.NormalQuantile(spec.Reliability)
	if err != nil {
		return engine.ToleranceFactorResult{}, err
	}

	sqrtN := math.Sqrt(float64(n))
	delta := zR * sqrtN
	q, err := c.dist.NonCentralTQuantile(spec.Confidence, float64(n-1), delta)
	if err != nil {
		return engine.ToleranceFactorResult{}, err
	}

	return engine.ToleranceFactorResult{
		Factor:     q / sqrtN,
		Sidedness:  core.OneSided,
		SampleSize: n,
	}, nil
}

// TwoSidedFactor computes the Howe-Guenther approximation
// k2 = sqrt((1 + 1/n) * z^2_{(1+R)/2} * (n-1) / chi2(1-C; n-1)).
func (c *Calculator) TwoSidedFactor(n int, spec core.ConfidenceReliabilitySpec) (engine.ToleranceFactorResult, error) {
	if n < 2 {
		return engine.ToleranceFactorResult{}, core.NewDomainError("n", n, "n >= 2")
	}

	z, err := c.dist.NormalQuantile((1 + spec.Reliability) / 2)
	if err != nil {
		return engine.ToleranceFactorResult{}, err
	}

	df := float64(n - 1)
	chi2, err := c.dist.ChiSquaredQuantile(1-spec.Confidence, df)
	if err != nil {
		return engine.ToleranceFactorResult{}, err
	}

	k2 := math.Sqrt((1 + 1/float64(n)) * z * z * df / chi2)
	return engine.ToleranceFactorResult{
		Factor:     k2,
		Sidedness:  core.TwoSided,
		SampleSize: n,
	}, nil
}

// Limits builds tolerance limits mean +/- k*stdDev per the factor's
// sidedness. One-sided factors produce both candidate bounds; the caller
// keeps the side its specification cares about.
func (c *Calculator) Limits(mean, stdDev float64, factor engine.ToleranceFactorResult) (engine.ToleranceLimits, error) {
	if stdDev < 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return engine.ToleranceLimits{}, core.NewDomainError("stdDev", stdDev, "finite stdDev >= 0")
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return engine.ToleranceLimits{}, core.NewDomainError("mean", mean, "finite value")
	}

	lower := mean - factor.Factor*stdDev
	upper := mean + factor.Factor*stdDev
	return engine.ToleranceLimits{
		Lower:     &lower,
		Upper:     &upper,
		Sidedness: factor.Sidedness,
	}, nil
}

// Analyze runs the full variables analysis on one sample: moments, factor for
// the requested sidedness, limits, and (when spec limits are supplied) the
// PASS/FAIL comparison and Ppk. Normality is the caller's claim; the
// non-normal pipeline is the entry point for unscreened data.
func (c *Calculator) Analyze(sample core.Sample, spec core.ConfidenceReliabilitySpec, side core.Sidedness, specLimits *core.SpecLimits) (*engine.ToleranceResult, error) {
	if !side.Valid() {
		return nil, core.NewDomainError("sidedness", side, `"one" or "two"`)
	}
	n := sample.Len()
	if n < 2 {
		return nil, core.NewInsufficientDataError("tolerance analysis", n, 2)
	}

	values := sample.Values()
	mean, err := stats.Mean(values)
	if err != nil {
		return nil, core.NewDomainError("sample", n, "non-empty sample")
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, core.NewDomainError("sample", n, "at least two measurements")
	}

	var factor engine.ToleranceFactorResult
	if side == core.OneSided {
		factor, err = c.OneSidedFactor(n, spec)
	} else {
		factor, err = c.TwoSidedFactor(n, spec)
	}
	if err != nil {
		return nil, err
	}

	limits, err := c.Limits(mean, sd, factor)
	if err != nil {
		return nil, err
	}

	result := &engine.ToleranceResult{
		Mean:   mean,
		StdDev: sd,
		Factor: factor,
		Limits: limits,
	}
	if specLimits != nil {
		cmp, err := c.CompareToSpec(limits, *specLimits)
		if err != nil {
			return nil, err
		}
		ppk, err := c.ProcessPerformanceIndex(mean, sd, *specLimits)
		if err != nil {
			return nil, err
		}
		result.Comparison = &cmp
		result.Ppk = &ppk
	}
	return result, nil
}

// CompareToSpec evaluates PASS/FAIL of computed limits against the supplied
// spec limits. Pure and idempotent: the verdict depends only on arguments.
func (c *Calculator) CompareToSpec(limits engine.ToleranceLimits, spec core.SpecLimits) (engine.SpecComparison, error) {
	if !spec.HasAny() {
		return engine.SpecComparison{}, core.NewDomainError("spec_limits", "none", "at least one of LSL, USL")
	}
	if err := spec.Validate(); err != nil {
		return engine.SpecComparison{}, err
	}

	pass := true
	if spec.Lower != nil {
		if limits.Lower == nil || *limits.Lower < *spec.Lower {
			pass = false
		}
	}
	if spec.Upper != nil {
		if limits.Upper == nil || *limits.Upper > *spec.Upper {
			pass = false
		}
	}
	return engine.SpecComparison{Pass: pass, Limits: spec}, nil
}

// ProcessPerformanceIndex computes Ppk over the supplied bounds:
// min((USL-mean)/(3s), (mean-LSL)/(3s)), using only the bounds given.
func (c *Calculator) ProcessPerformanceIndex(mean, stdDev float64, spec core.SpecLimits) (float64, error) {
	if stdDev <= 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return 0, core.NewDomainError("stdDev", stdDev, "stdDev > 0")
	}
	if !spec.HasAny() {
		return 0, core.NewDomainError("spec_limits", "none", "at least one of LSL, USL")
	}
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	ppk := math.Inf(1)
	if spec.Upper != nil {
		ppk = math.Min(ppk, (*spec.Upper-mean)/(3*stdDev))
	}
	if spec.Lower != nil {
		ppk = math.Min(ppk, (mean-*spec.Lower)/(3*stdDev))
	}
	return ppk, nil
}
