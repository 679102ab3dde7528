// Package reliability computes zero-failure demonstration durations and
// Arrhenius thermal acceleration factors.
package reliability

import (
	"math"

	"vvengine/adapters/stats/distmath"
	"vvengine/domain/core"
	"vvengine/domain/engine"
)

// boltzmannEV is the Boltzmann constant in eV/K (CODATA 2018, exact).
const boltzmannEV = 8.617333262e-5

// Calculator computes reliability demonstration quantities
type Calculator struct {
	dist *distmath.Distributions
}

// NewCalculator creates a new reliability calculator
func NewCalculator() *Calculator {
	return &Calculator{dist: distmath.New()}
}

// ZeroFailureDuration computes the per-unit test duration for a zero-failure
// demonstration at confidence C: unitMultiplier * chi2(C; 2) / 2. With two
// degrees of freedom this reduces to -ln(1-C) scaled by the multiplier.
func (c *Calculator) ZeroFailureDuration(confidence, unitMultiplier float64) (engine.ReliabilityResult, error) {
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		return engine.ReliabilityResult{}, core.NewDomainError("confidence", confidence, "0 < C < 1")
	}
	if unitMultiplier <= 0 || math.IsNaN(unitMultiplier) || math.IsInf(unitMultiplier, 0) {
		return engine.ReliabilityResult{}, core.NewDomainError("unit_multiplier", unitMultiplier, "finite value > 0")
	}

	chi2, err := c.dist.ChiSquaredQuantile(confidence, 2)
	if err != nil {
		return engine.ReliabilityResult{}, err
	}

	return engine.ReliabilityResult{
		Kind:  engine.ReliabilityZeroFailure,
		Value: unitMultiplier * chi2 / 2,
	}, nil
}

// AccelerationFactor computes the Arrhenius thermal acceleration factor
// AF = exp[(Ea/k) * (1/Tuse - 1/Ttest)] with temperatures in Kelvin.
// Equal temperatures are rejected: the acceleration is degenerate.
func (c *Calculator) AccelerationFactor(activationEnergyEV, tUseK, tTestK float64) (engine.ReliabilityResult, error) {
	if activationEnergyEV <= 0 || math.IsNaN(activationEnergyEV) || math.IsInf(activationEnergyEV, 0) {
		return engine.ReliabilityResult{}, core.NewDomainError("activation_energy_ev", activationEnergyEV, "finite value > 0")
	}
	if tUseK <= 0 || math.IsNaN(tUseK) || math.IsInf(tUseK, 0) {
		return engine.ReliabilityResult{}, core.NewDomainError("t_use_k", tUseK, "finite temperature > 0 K")
	}
	if tTestK <= 0 || math.IsNaN(tTestK) || math.IsInf(tTestK, 0) {
		return engine.ReliabilityResult{}, core.NewDomainError("t_test_k", tTestK, "finite temperature > 0 K")
	}
	if tUseK == tTestK {
		return engine.ReliabilityResult{}, core.NewDomainError("t_test_k", tTestK, "T_test != T_use")
	}

	af := math.Exp(activationEnergyEV / boltzmannEV * (1/tUseK - 1/tTestK))
	return engine.ReliabilityResult{
		Kind:  engine.ReliabilityAcceleration,
		Value: af,
	}, nil
}
