package attribute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvengine/domain/core"
	"vvengine/domain/engine"
)

func mustSpec(t *testing.T, c, r float64) core.ConfidenceReliabilitySpec {
	t.Helper()
	spec, err := core.NewConfidenceReliability(c, r)
	require.NoError(t, err)
	return spec
}

func TestSampleSize_SuccessRunScenario(t *testing.T) {
	s := NewSizer()

	// C=0.95, R=0.90, c=0: ceil(ln(0.05)/ln(0.90)) = 29
	res, err := s.SampleSize(mustSpec(t, 0.95, 0.90), 0)
	require.NoError(t, err)
	assert.Equal(t, 29, res.SampleSize)
	assert.Equal(t, 0, res.AllowableFailures)
	assert.Equal(t, engine.MethodSuccessRun, res.Method)
}

func TestSampleSize_SuccessRunMinimality(t *testing.T) {
	s := NewSizer()

	// R^n <= 1-C < R^(n-1) across a grid of specs
	for _, c := range []float64{0.80, 0.90, 0.95, 0.99} {
		for _, r := range []float64{0.70, 0.90, 0.95, 0.99} {
			res, err := s.SampleSize(mustSpec(t, c, r), 0)
			require.NoError(t, err)

			n := float64(res.SampleSize)
			assert.LessOrEqual(t, math.Pow(r, n), 1-c+1e-12, "C=%v R=%v", c, r)
			if res.SampleSize > 1 {
				assert.Greater(t, math.Pow(r, n-1), 1-c, "C=%v R=%v", c, r)
			}
		}
	}
}

func TestSampleSize_KnownBinomialValues(t *testing.T) {
	s := NewSizer()
	spec := mustSpec(t, 0.95, 0.90)

	// Published 95/90 attribute plans: c=1 -> 46, c=2 -> 61, c=3 -> 76
	for c, want := range map[int]int{1: 46, 2: 61, 3: 76} {
		res, err := s.SampleSize(spec, c)
		require.NoError(t, err)
		assert.Equal(t, want, res.SampleSize, "c=%d", c)
		assert.Equal(t, engine.MethodBinomialSearch, res.Method)
	}
}

func TestSampleSize_BinomialMinimality(t *testing.T) {
	s := NewSizer()
	spec := mustSpec(t, 0.90, 0.95)

	res, err := s.SampleSize(spec, 2)
	require.NoError(t, err)

	cdfAt := func(n int) float64 {
		cdf, err := s.dist.BinomialCDF(2, n, 1-spec.Reliability)
		require.NoError(t, err)
		return cdf
	}
	assert.LessOrEqual(t, cdfAt(res.SampleSize), 1-spec.Confidence)
	assert.Greater(t, cdfAt(res.SampleSize-1), 1-spec.Confidence)
}

func TestSampleSize_NegativeFailures(t *testing.T) {
	s := NewSizer()

	_, err := s.SampleSize(mustSpec(t, 0.95, 0.90), -1)
	assert.True(t, core.IsDomainError(err))
}

func TestSensitivitySweep(t *testing.T) {
	s := NewSizer()

	results, err := s.SensitivitySweep(mustSpec(t, 0.95, 0.90))
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Exactly c = 0..3 in order, n monotonically non-decreasing in c
	for c, res := range results {
		assert.Equal(t, c, res.AllowableFailures)
		if c > 0 {
			assert.GreaterOrEqual(t, res.SampleSize, results[c-1].SampleSize)
		}
	}
	assert.Equal(t, []int{29, 46, 61, 76}, []int{
		results[0].SampleSize, results[1].SampleSize,
		results[2].SampleSize, results[3].SampleSize,
	})
}

func TestSensitivitySweep_Deterministic(t *testing.T) {
	s := NewSizer()
	spec := mustSpec(t, 0.99, 0.95)

	first, err := s.SensitivitySweep(spec)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := s.SensitivitySweep(spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
