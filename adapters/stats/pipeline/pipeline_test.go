package pipeline

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvengine/domain/core"
	"vvengine/domain/engine"
)

func mustSample(t *testing.T, values []float64) core.Sample {
	t.Helper()
	s, err := core.NewSample(values)
	require.NoError(t, err)
	return s
}

func defaultOpts(t *testing.T) Options {
	t.Helper()
	spec, err := core.NewConfidenceReliability(0.95, 0.90)
	require.NoError(t, err)
	return Options{Spec: spec, Sidedness: core.TwoSided}
}

func TestAnalyze_NormalDataTakesParametricDirect(t *testing.T) {
	a := NewAnalyzer()

	values := []float64{
		9.2, 9.5, 9.7, 9.8, 9.9, 10.0, 10.0, 10.1,
		10.1, 10.2, 10.3, 10.4, 10.5, 10.7, 10.9, 11.2,
	}
	res, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)

	assert.Equal(t, engine.MethodParametricDirect, res.Method)
	assert.Empty(t, res.Attempts)
	assert.Empty(t, res.Screen.FlaggedIndices)
	require.Len(t, res.RawVerdicts, 2)
	for _, v := range res.RawVerdicts {
		assert.True(t, v.Accepted, v.TestName)
	}

	// Limits are mean +/- k*s with the two-sided factor
	require.NotNil(t, res.Factor)
	require.NotNil(t, res.Limits.Lower)
	require.NotNil(t, res.Limits.Upper)
	assert.InDelta(t, res.Mean-res.Factor.Factor*res.StdDev, *res.Limits.Lower, 1e-9)
	assert.InDelta(t, res.Mean+res.Factor.Factor*res.StdDev, *res.Limits.Upper, 1e-9)
	assert.Nil(t, res.WilksConfidence)
}

func TestAnalyze_OutlierSampleFlagsAndLeavesDataIntact(t *testing.T) {
	a := NewAnalyzer()

	// Six clustered readings plus one gross outlier at index 6.
	values := []float64{10, 12, 11, 13, 12, 11, 90}
	res, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)

	assert.Equal(t, []int{6}, res.Screen.FlaggedIndices)
	assert.Equal(t, 7, res.SampleSize)

	// The raw sample is grossly non-normal, so the direct path is closed.
	swRejected := false
	for _, v := range res.RawVerdicts {
		if !v.Accepted {
			swRejected = true
		}
	}
	assert.True(t, swRejected)
	assert.NotEqual(t, engine.MethodParametricDirect, res.Method)

	// Whatever terminal state the search reaches, both bounds must exist and
	// the outlier keeps its influence (the analyzer never removes data).
	require.NotNil(t, res.Limits.Lower)
	require.NotNil(t, res.Limits.Upper)
	if res.Method == engine.MethodNonParametricWilks {
		assert.Equal(t, 10.0, *res.Limits.Lower)
		assert.Equal(t, 90.0, *res.Limits.Upper)
		require.NotNil(t, res.WilksConfidence)
		// 1 - R^n - n*R^(n-1)*(1-R) with R=0.90, n=7
		assert.InDelta(t, 1-math.Pow(0.9, 7)-7*math.Pow(0.9, 6)*0.1, *res.WilksConfidence, 1e-12)
		assert.NotEmpty(t, res.Attempts)
	} else {
		assert.True(t, strings.HasPrefix(string(res.Method), "parametric-transformed:"))
	}
}

func TestAnalyze_ScreenedResubmissionPassesDirect(t *testing.T) {
	a := NewAnalyzer()

	// Same data with the flagged point excluded by the caller.
	res, err := a.Analyze(mustSample(t, []float64{10, 12, 11, 13, 12, 11}), defaultOpts(t))
	require.NoError(t, err)

	assert.Equal(t, engine.MethodParametricDirect, res.Method)
	assert.Empty(t, res.Screen.FlaggedIndices)
}

func TestAnalyze_BimodalFallsBackToWilks(t *testing.T) {
	a := NewAnalyzer()

	// Two tight clusters: no monotone transform can merge them, so every
	// candidate fails normality and the machine must land on Wilks.
	values := []float64{1, 1.01, 1.02, 1.03, 100, 100.01, 100.02, 100.03}
	res, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)

	assert.Equal(t, engine.MethodNonParametricWilks, res.Method)
	assert.Equal(t, 1.0, *res.Limits.Lower)
	assert.Equal(t, 100.03, *res.Limits.Upper)
	assert.Equal(t, core.TwoSided, res.Limits.Sidedness)
	require.NotNil(t, res.WilksConfidence)
	assert.InDelta(t, 1-math.Pow(0.9, 8)-8*math.Pow(0.9, 7)*0.1, *res.WilksConfidence, 1e-12)

	// Every candidate was applied and rejected, in declared order.
	require.Len(t, res.Attempts, 3)
	wantOrder := []engine.TransformKind{engine.TransformBoxCox, engine.TransformLog, engine.TransformSqrt}
	for i, attempt := range res.Attempts {
		assert.Equal(t, wantOrder[i], attempt.Kind)
		assert.True(t, attempt.Applied)
		assert.False(t, attempt.Accepted)
		assert.Len(t, attempt.Verdicts, 2)
	}
	assert.Nil(t, res.Factor)
	assert.Nil(t, res.TransformedLimits)
}

func TestAnalyze_NonPositiveDataSkipsAllTransforms(t *testing.T) {
	a := NewAnalyzer()

	// Non-normal and containing negatives: every power transform is
	// inapplicable and must be recorded as skipped, not failed.
	values := []float64{-5, -4.99, -4.98, -4.97, 100, 100.01, 100.02}
	res, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)

	assert.Equal(t, engine.MethodNonParametricWilks, res.Method)
	require.Len(t, res.Attempts, 3)
	for _, attempt := range res.Attempts {
		assert.False(t, attempt.Applied, string(attempt.Kind))
		assert.NotEmpty(t, attempt.SkipReason, string(attempt.Kind))
		assert.Empty(t, attempt.Verdicts)
	}
	assert.Equal(t, -5.0, *res.Limits.Lower)
	assert.Equal(t, 100.02, *res.Limits.Upper)
}

func TestAnalyze_LognormalDataRecovered(t *testing.T) {
	a := NewAnalyzer()

	// exp of near-normal scores: heavily right-skewed on the original scale,
	// normal after a log-family transform.
	base := []float64{
		-1.87, -1.40, -1.10, -0.86, -0.66, -0.47, -0.30, -0.15,
		0.0, 0.15, 0.30, 0.47, 0.66, 0.86, 1.10, 1.40, 1.87,
	}
	values := make([]float64, len(base))
	for i, z := range base {
		values[i] = math.Exp(2 * z)
	}

	res, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(res.Method), "parametric-transformed:"))
	require.NotNil(t, res.TransformedLimits)
	require.NotNil(t, res.Limits.Lower)
	require.NotNil(t, res.Limits.Upper)
	assert.Greater(t, *res.Limits.Lower, 0.0)
	assert.Less(t, *res.Limits.Lower, *res.Limits.Upper)

	// The accepted attempt carries its audit trail.
	last := res.Attempts[len(res.Attempts)-1]
	assert.True(t, last.Accepted)
	assert.True(t, last.Applied)
	require.Len(t, last.Verdicts, 2)
	if last.Kind == engine.TransformBoxCox {
		require.NotNil(t, last.Lambda)
	}
}

func TestAnalyze_SpecComparison(t *testing.T) {
	a := NewAnalyzer()
	opts := defaultOpts(t)
	opts.SpecLimits = &core.SpecLimits{Lower: fptr(0), Upper: fptr(20)}

	values := []float64{
		9.2, 9.5, 9.7, 9.8, 9.9, 10.0, 10.0, 10.1,
		10.1, 10.2, 10.3, 10.4, 10.5, 10.7, 10.9, 11.2,
	}
	res, err := a.Analyze(mustSample(t, values), opts)
	require.NoError(t, err)

	require.NotNil(t, res.Comparison)
	assert.True(t, res.Comparison.Pass)

	tight := defaultOpts(t)
	tight.SpecLimits = &core.SpecLimits{Lower: fptr(9.9), Upper: fptr(10.2)}
	res, err = a.Analyze(mustSample(t, values), tight)
	require.NoError(t, err)
	require.NotNil(t, res.Comparison)
	assert.False(t, res.Comparison.Pass)
}

func TestAnalyze_OneSidedUsesOneSidedFactor(t *testing.T) {
	a := NewAnalyzer()
	opts := defaultOpts(t)
	opts.Sidedness = core.OneSided

	values := []float64{
		9.2, 9.5, 9.7, 9.8, 9.9, 10.0, 10.0, 10.1,
		10.1, 10.2, 10.3, 10.4, 10.5, 10.7, 10.9, 11.2,
	}
	res, err := a.Analyze(mustSample(t, values), opts)
	require.NoError(t, err)

	require.NotNil(t, res.Factor)
	assert.Equal(t, core.OneSided, res.Factor.Sidedness)
	assert.Equal(t, core.OneSided, res.Limits.Sidedness)
}

func TestAnalyze_InputValidation(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.Analyze(mustSample(t, []float64{1, 2}), defaultOpts(t))
	assert.True(t, core.IsInsufficientDataError(err))

	opts := defaultOpts(t)
	opts.Sidedness = core.Sidedness("both")
	_, err = a.Analyze(mustSample(t, []float64{1, 2, 3, 4}), opts)
	assert.True(t, core.IsDomainError(err))
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := NewAnalyzer()
	values := []float64{10, 12, 11, 13, 12, 11, 90}

	first, err := a.Analyze(mustSample(t, values), defaultOpts(t))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.Analyze(mustSample(t, values), defaultOpts(t))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func fptr(v float64) *float64 { return &v }
