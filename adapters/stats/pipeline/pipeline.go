// Package pipeline implements the non-normal data remediation pipeline:
// outlier screening, conjunctive normality testing, transformation search,
// back-transformation and the non-parametric fallback. It is modeled as an
// explicit state machine so every transition is independently testable.
package pipeline

import (
	"math"

	"github.com/montanaflynn/stats"

	"vvengine/adapters/stats/distmath"
	"vvengine/adapters/stats/tolerance"
	"vvengine/domain/core"
	"vvengine/domain/engine"
)

// DefaultAlpha is the significance level of both normality tests.
const DefaultAlpha = 0.05

const minPipelineSamples = 3

// state tracks pipeline progress; terminal states carry the method tag.
type state int

const (
	stateScreened state = iota
	stateNormalAccepted
	stateTransformSearch
	stateFallback
)

// Options configure one pipeline run
type Options struct {
	Spec       core.ConfidenceReliabilitySpec
	Sidedness  core.Sidedness
	Alpha      float64          // 0 means DefaultAlpha
	SpecLimits *core.SpecLimits // optional PASS/FAIL comparison
}

// Analyzer orchestrates the pipeline over a single sample
type Analyzer struct {
	dist       *distmath.Distributions
	tolerance  *tolerance.Calculator
	transforms []Transform
}

// NewAnalyzer creates a pipeline analyzer with the ordered transform
// candidates: Box-Cox (optimized lambda), natural log, square root.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		dist:      distmath.New(),
		tolerance: tolerance.NewCalculator(),
		transforms: []Transform{
			NewBoxCoxTransform(),
			NewLogTransform(),
			NewSqrtTransform(),
		},
	}
}

// Analyze runs the full state machine on one sample. Outlier flags are
// advisory: the caller decides whether to exclude flagged points and
// re-submit; this method never removes data.
func (a *Analyzer) Analyze(sample core.Sample, opts Options) (*engine.PipelineResult, error) {
	if !opts.Sidedness.Valid() {
		return nil, core.NewDomainError("sidedness", opts.Sidedness, `"one" or "two"`)
	}
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}

	values := sample.Values()
	n := len(values)
	if n < minPipelineSamples {
		return nil, core.NewInsufficientDataError("non-normal pipeline", n, minPipelineSamples)
	}

	screen, err := screenOutliers(values)
	if err != nil {
		return nil, err
	}

	mean, sd, err := sampleMoments(values)
	if err != nil {
		return nil, err
	}

	result := &engine.PipelineResult{
		SampleSize: n,
		Mean:       mean,
		StdDev:     sd,
		Screen:     screen,
	}

	// Screened -> NormalAccepted | TransformSearch
	rawVerdicts, rawNormal, err := a.normalityVerdicts(values, mean, sd, alpha)
	if err != nil {
		return nil, err
	}
	result.RawVerdicts = rawVerdicts

	current := stateScreened
	for terminal := false; !terminal; {
		switch current {
		case stateScreened:
			if rawNormal {
				current = stateNormalAccepted
			} else {
				current = stateTransformSearch
			}
		case stateNormalAccepted:
			if err := a.finishParametricDirect(result, mean, sd, opts); err != nil {
				return nil, err
			}
			terminal = true
		case stateTransformSearch:
			done, err := a.runTransformSearch(result, values, alpha, opts)
			if err != nil {
				return nil, err
			}
			if done {
				terminal = true
			} else {
				current = stateFallback
			}
		case stateFallback:
			a.finishWilks(result, values, opts)
			terminal = true
		}
	}

	if opts.SpecLimits != nil {
		cmp, err := a.tolerance.CompareToSpec(result.Limits, *opts.SpecLimits)
		if err != nil {
			return nil, err
		}
		result.Comparison = &cmp
	}
	return result, nil
}

// finishParametricDirect terminates in the normal-accepted state: tolerance
// limits straight on the raw data.
func (a *Analyzer) finishParametricDirect(result *engine.PipelineResult, mean, sd float64, opts Options) error {
	factor, limits, err := a.toleranceOn(mean, sd, result.SampleSize, opts)
	if err != nil {
		return err
	}
	result.Method = engine.MethodParametricDirect
	result.Factor = factor
	result.Limits = limits
	return nil
}

// runTransformSearch walks the ordered candidates; the first transform whose
// transformed sample passes the conjunctive normality test terminates the
// machine. Returns false when every candidate is skipped or rejected.
func (a *Analyzer) runTransformSearch(result *engine.PipelineResult, values []float64, alpha float64, opts Options) (bool, error) {
	for _, tr := range a.transforms {
		attempt := engine.TransformationAttempt{Kind: tr.Kind()}

		if ok, reason := tr.Applicable(values); !ok {
			// Skipped candidate, not a failed normality test.
			attempt.SkipReason = reason
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		transformed, lambda, err := tr.Forward(values)
		if err != nil {
			return false, err
		}
		attempt.Applied = true
		attempt.Lambda = lambda

		tMean, tSD, err := sampleMoments(transformed)
		if err != nil {
			return false, err
		}
		verdicts, accepted, err := a.normalityVerdicts(transformed, tMean, tSD, alpha)
		if err != nil {
			return false, err
		}
		attempt.Verdicts = verdicts
		attempt.Accepted = accepted

		if !accepted {
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		factor, tLimits, err := a.toleranceOn(tMean, tSD, result.SampleSize, opts)
		if err != nil {
			return false, err
		}
		limits, backErr := backTransformLimits(tr, tLimits, lambda)
		if backErr != nil {
			// The limit left the inverse's domain; the candidate cannot
			// produce original-scale limits, so the search continues.
			attempt.SkipReason = "back-transform outside inverse domain: " + backErr.Error()
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		result.Attempts = append(result.Attempts, attempt)
		result.Method = engine.MethodParametricTransformed(tr.Kind())
		result.Factor = factor
		result.TransformedLimits = &tLimits
		result.Limits = limits
		return true, nil
	}
	return false, nil
}

// finishWilks terminates in the fallback state: non-parametric limits at the
// sample extrema, with the achieved two-sided confidence as a diagnostic.
func (a *Analyzer) finishWilks(result *engine.PipelineResult, values []float64, opts Options) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	n := float64(len(values))
	r := opts.Spec.Reliability
	achieved := 1 - math.Pow(r, n) - n*math.Pow(r, n-1)*(1-r)

	result.Method = engine.MethodNonParametricWilks
	result.Limits = engine.ToleranceLimits{Lower: &lo, Upper: &hi, Sidedness: core.TwoSided}
	result.WilksConfidence = &achieved
}

// toleranceOn computes the factor and limits for the requested sidedness.
func (a *Analyzer) toleranceOn(mean, sd float64, n int, opts Options) (*engine.ToleranceFactorResult, engine.ToleranceLimits, error) {
	var (
		factor engine.ToleranceFactorResult
		err    error
	)
	if opts.Sidedness == core.OneSided {
		factor, err = a.tolerance.OneSidedFactor(n, opts.Spec)
	} else {
		factor, err = a.tolerance.TwoSidedFactor(n, opts.Spec)
	}
	if err != nil {
		return nil, engine.ToleranceLimits{}, err
	}

	limits, err := a.tolerance.Limits(mean, sd, factor)
	if err != nil {
		return nil, engine.ToleranceLimits{}, err
	}
	return &factor, limits, nil
}

// normalityVerdicts runs Shapiro-Wilk and Anderson-Darling at alpha.
// Normality is accepted only when both tests accept (conjunctive policy:
// either rejection sends the pipeline to the transformation search).
func (a *Analyzer) normalityVerdicts(values []float64, mean, sd float64, alpha float64) ([]engine.NormalityVerdict, bool, error) {
	w, p, err := a.dist.ShapiroWilk(values)
	if err != nil {
		return nil, false, err
	}
	swVerdict := engine.NormalityVerdict{
		TestName:  "shapiro-wilk",
		Statistic: w,
		PValue:    &p,
		Alpha:     alpha,
		Accepted:  p >= alpha,
	}

	a2, err := a.dist.AndersonDarling(values, mean, sd)
	if err != nil {
		return nil, false, err
	}
	cv, err := a.dist.AndersonDarlingCriticalValue(len(values), alpha)
	if err != nil {
		return nil, false, err
	}
	adVerdict := engine.NormalityVerdict{
		TestName:      "anderson-darling",
		Statistic:     a2,
		CriticalValue: &cv,
		Alpha:         alpha,
		Accepted:      a2 <= cv,
	}

	verdicts := []engine.NormalityVerdict{swVerdict, adVerdict}
	return verdicts, swVerdict.Accepted && adVerdict.Accepted, nil
}

// backTransformLimits maps transformed-scale limits to the original scale.
// Every candidate transform is monotone increasing, so bounds keep their role.
func backTransformLimits(tr Transform, limits engine.ToleranceLimits, lambda *float64) (engine.ToleranceLimits, error) {
	out := engine.ToleranceLimits{Sidedness: limits.Sidedness}
	if limits.Lower != nil {
		v, err := tr.Inverse(*limits.Lower, lambda)
		if err != nil {
			return engine.ToleranceLimits{}, err
		}
		out.Lower = &v
	}
	if limits.Upper != nil {
		v, err := tr.Inverse(*limits.Upper, lambda)
		if err != nil {
			return engine.ToleranceLimits{}, err
		}
		out.Upper = &v
	}
	return out, nil
}

// screenOutliers computes Tukey fences Q1-1.5*IQR and Q3+1.5*IQR and flags
// indices outside them. Advisory only.
func screenOutliers(values []float64) (engine.OutlierScreen, error) {
	q1, err := stats.Percentile(values, 25)
	if err != nil {
		return engine.OutlierScreen{}, core.NewDomainError("sample", len(values), "enough data for quartiles")
	}
	q3, err := stats.Percentile(values, 75)
	if err != nil {
		return engine.OutlierScreen{}, core.NewDomainError("sample", len(values), "enough data for quartiles")
	}

	iqr := q3 - q1
	screen := engine.OutlierScreen{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerFence: q1 - 1.5*iqr,
		UpperFence: q3 + 1.5*iqr,
	}
	for i, v := range values {
		if v < screen.LowerFence || v > screen.UpperFence {
			screen.FlaggedIndices = append(screen.FlaggedIndices, i)
		}
	}
	return screen, nil
}

// sampleMoments returns the mean and sample standard deviation.
func sampleMoments(values []float64) (mean, sd float64, err error) {
	mean, err = stats.Mean(values)
	if err != nil {
		return 0, 0, core.NewDomainError("sample", len(values), "non-empty sample")
	}
	sd, err = stats.StandardDeviationSample(values)
	if err != nil {
		return 0, 0, core.NewDomainError("sample", len(values), "at least two measurements")
	}
	return mean, sd, nil
}
