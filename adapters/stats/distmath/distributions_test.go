package distmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvengine/domain/core"
)

func TestNormalQuantile_KnownValues(t *testing.T) {
	d := New()

	q, err := d.NormalQuantile(0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.6448536, q, 1e-6)

	q, err = d.NormalQuantile(0.975)
	require.NoError(t, err)
	assert.InDelta(t, 1.9599640, q, 1e-6)

	q, err = d.NormalQuantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, q, 1e-12)
}

func TestNormalQuantile_DomainErrors(t *testing.T) {
	d := New()
	for _, p := range []float64{0, 1, -0.5, 1.5} {
		_, err := d.NormalQuantile(p)
		assert.True(t, core.IsDomainError(err), "p=%v should be a domain error", p)
	}
}

func TestChiSquaredQuantile_KnownValues(t *testing.T) {
	d := New()

	q, err := d.ChiSquaredQuantile(0.05, 9)
	require.NoError(t, err)
	assert.InDelta(t, 3.325113, q, 1e-4)

	q, err = d.ChiSquaredQuantile(0.95, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.991465, q, 1e-4)
}

func TestChiSquaredQuantile_DomainErrors(t *testing.T) {
	d := New()

	_, err := d.ChiSquaredQuantile(0.95, 0)
	assert.True(t, core.IsDomainError(err))

	_, err = d.ChiSquaredQuantile(1.0, 5)
	assert.True(t, core.IsDomainError(err))
}

func TestStudentT_KnownValues(t *testing.T) {
	d := New()

	q, err := d.StudentTQuantile(0.95, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.812461, q, 1e-4)

	cdf, err := d.StudentTCDF(q, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, cdf, 1e-9)
}

func TestBinomialCDF(t *testing.T) {
	d := New()

	// Two fair coin flips: P(X <= 1) = 0.75
	p, err := d.BinomialCDF(1, 2, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)

	// k >= n always covers the whole support
	p, err = d.BinomialCDF(5, 5, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	_, err = d.BinomialCDF(-1, 5, 0.3)
	assert.True(t, core.IsDomainError(err))

	_, err = d.BinomialCDF(1, 0, 0.3)
	assert.True(t, core.IsDomainError(err))
}
