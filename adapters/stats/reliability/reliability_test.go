package reliability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvengine/domain/core"
	"vvengine/domain/engine"
)

func TestZeroFailureDuration(t *testing.T) {
	c := NewCalculator()

	// chi2(C; 2)/2 collapses to -ln(1-C)
	for _, conf := range []float64{0.80, 0.90, 0.95, 0.99} {
		res, err := c.ZeroFailureDuration(conf, 1)
		require.NoError(t, err)
		assert.Equal(t, engine.ReliabilityZeroFailure, res.Kind)
		assert.InEpsilon(t, -math.Log(1-conf), res.Value, 1e-9, "C=%v", conf)
	}

	// Multiplier scales linearly
	res, err := c.ZeroFailureDuration(0.95, 3.5)
	require.NoError(t, err)
	assert.InEpsilon(t, 3.5*-math.Log(0.05), res.Value, 1e-9)
}

func TestZeroFailureDuration_Validation(t *testing.T) {
	c := NewCalculator()

	for _, conf := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, err := c.ZeroFailureDuration(conf, 1)
		assert.True(t, core.IsDomainError(err), "C=%v", conf)
	}
	_, err := c.ZeroFailureDuration(0.95, 0)
	assert.True(t, core.IsDomainError(err))
	_, err = c.ZeroFailureDuration(0.95, -1)
	assert.True(t, core.IsDomainError(err))
}

func TestAccelerationFactor_ArrheniusScenario(t *testing.T) {
	c := NewCalculator()

	// Ea=0.7 eV, Tuse=298K, Ttest=358K
	res, err := c.AccelerationFactor(0.7, 298, 358)
	require.NoError(t, err)
	assert.Equal(t, engine.ReliabilityAcceleration, res.Kind)

	want := math.Exp(0.7 / 8.617333262e-5 * (1.0/298 - 1.0/358))
	assert.InEpsilon(t, want, res.Value, 1e-4)
	// Hand-computed reference
	assert.InEpsilon(t, 96.4, res.Value, 1e-2)
}

func TestAccelerationFactor_Direction(t *testing.T) {
	c := NewCalculator()

	hotter, err := c.AccelerationFactor(0.7, 298, 358)
	require.NoError(t, err)
	assert.Greater(t, hotter.Value, 1.0)

	// Testing below use temperature decelerates
	colder, err := c.AccelerationFactor(0.7, 358, 298)
	require.NoError(t, err)
	assert.Less(t, colder.Value, 1.0)
	assert.InEpsilon(t, 1/hotter.Value, colder.Value, 1e-12)
}

func TestAccelerationFactor_Validation(t *testing.T) {
	c := NewCalculator()

	_, err := c.AccelerationFactor(0, 298, 358)
	assert.True(t, core.IsDomainError(err))

	_, err = c.AccelerationFactor(0.7, -5, 358)
	assert.True(t, core.IsDomainError(err))

	_, err = c.AccelerationFactor(0.7, 298, 0)
	assert.True(t, core.IsDomainError(err))

	// Equal temperatures are degenerate
	_, err = c.AccelerationFactor(0.7, 298, 298)
	assert.True(t, core.IsDomainError(err))
}
