// Package distmath wraps the standard statistical distributions behind
// domain-validated pure functions. Everything above it (attribute sizing,
// tolerance factors, the non-normal pipeline) depends on this package.
package distmath

import (
	"gonum.org/v1/gonum/stat/distuv"

	"vvengine/domain/core"
)

// Distributions provides unified access to all statistical distributions.
// Stateless; safe for concurrent use.
type Distributions struct{}

// New creates a new distributions utility
func New() *Distributions {
	return &Distributions{}
}

// NormalCDF computes the standard normal cumulative distribution function
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal inverse CDF for p in (0,1)
func (d *Distributions) NormalQuantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, core.NewDomainError("p", p, "0 < p < 1")
	}
	return distuv.UnitNormal.Quantile(p), nil
}

// ChiSquaredCDF computes the chi-squared CDF with df degrees of freedom
func (d *Distributions) ChiSquaredCDF(x, df float64) (float64, error) {
	if df <= 0 {
		return 0, core.NewDomainError("df", df, "df > 0")
	}
	return distuv.ChiSquared{K: df}.CDF(x), nil
}

// ChiSquaredQuantile computes the chi-squared inverse CDF for p in (0,1)
func (d *Distributions) ChiSquaredQuantile(p, df float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, core.NewDomainError("p", p, "0 < p < 1")
	}
	if df <= 0 {
		return 0, core.NewDomainError("df", df, "df > 0")
	}
	return distuv.ChiSquared{K: df}.Quantile(p), nil
}

// StudentTCDF computes the central Student's t CDF with df degrees of freedom
func (d *Distributions) StudentTCDF(t, df float64) (float64, error) {
	if df <= 0 {
		return 0, core.NewDomainError("df", df, "df > 0")
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(t), nil
}

// StudentTQuantile computes the central Student's t inverse CDF for p in (0,1)
func (d *Distributions) StudentTQuantile(p, df float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, core.NewDomainError("p", p, "0 < p < 1")
	}
	if df <= 0 {
		return 0, core.NewDomainError("df", df, "df > 0")
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p), nil
}

// BinomialCDF computes P(X <= k) for X ~ Binomial(n, p)
func (d *Distributions) BinomialCDF(k, n int, p float64) (float64, error) {
	if n <= 0 {
		return 0, core.NewDomainError("n", n, "n > 0")
	}
	if k < 0 {
		return 0, core.NewDomainError("k", k, "k >= 0")
	}
	if !(p > 0 && p < 1) {
		return 0, core.NewDomainError("p", p, "0 < p < 1")
	}
	if k >= n {
		return 1, nil
	}
	return distuv.Binomial{N: float64(n), P: p}.CDF(float64(k)), nil
}
