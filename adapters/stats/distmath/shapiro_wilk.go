package distmath

import (
	"math"
	"sort"

	"vvengine/domain/core"
)

const (
	shapiroWilkMinN = 3
	shapiroWilkMaxN = 5000
)

// ShapiroWilk computes the Shapiro-Wilk W statistic and approximate p-value
// for the hypothesis that the sample is drawn from a normal distribution
// (Royston 1992, AS R94 weight and p-value approximations). Valid for
// 3 <= n <= 5000. The input is not mutated.
func (d *Distributions) ShapiroWilk(values []float64) (w, pValue float64, err error) {
	n := len(values)
	if n < shapiroWilkMinN {
		return 0, 0, core.NewInsufficientDataError("Shapiro-Wilk test", n, shapiroWilkMinN)
	}
	if n > shapiroWilkMaxN {
		return 0, 0, core.NewDomainError("n", n, "n <= 5000 for Shapiro-Wilk")
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if sorted[n-1] == sorted[0] {
		return 0, 0, core.NewDomainError("sample", "zero range", "non-constant measurements")
	}

	weights, err := d.shapiroWilkWeights(n)
	if err != nil {
		return 0, 0, err
	}

	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)

	num, den := 0.0, 0.0
	for i, v := range sorted {
		num += weights[i] * v
		diff := v - mean
		den += diff * diff
	}
	if den == 0 {
		return 0, 0, core.NewDomainError("sample", "zero variance", "non-constant measurements")
	}

	w = num * num / den
	if w > 1 {
		w = 1
	}

	pValue = d.shapiroWilkPValue(w, n)
	return w, pValue, nil
}

// shapiroWilkWeights builds the order-statistic weight vector a (Royston's
// polynomial adjustment of the Blom-score direction cosines).
func (d *Distributions) shapiroWilkWeights(n int) ([]float64, error) {
	m := make([]float64, n)
	ssm := 0.0
	for i := 0; i < n; i++ {
		q := (float64(i+1) - 0.375) / (float64(n) + 0.25)
		z, err := d.NormalQuantile(q)
		if err != nil {
			return nil, err
		}
		m[i] = z
		ssm += z * z
	}

	a := make([]float64, n)
	rms := math.Sqrt(ssm)

	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
		return a, nil
	}

	u := 1 / math.Sqrt(float64(n))
	an := -2.706056*math.Pow(u, 5) + 4.434685*math.Pow(u, 4) -
		2.071190*math.Pow(u, 3) - 0.147981*u*u + 0.221157*u + m[n-1]/rms

	if n <= 5 {
		phi := (ssm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
		a[n-1] = an
		a[0] = -an
		return a, nil
	}

	an1 := -3.582633*math.Pow(u, 5) + 5.682633*math.Pow(u, 4) -
		1.752461*math.Pow(u, 3) - 0.293762*u*u + 0.042981*u + m[n-2]/rms

	phi := (ssm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
	for i := 2; i < n-2; i++ {
		a[i] = m[i] / math.Sqrt(phi)
	}
	a[n-1] = an
	a[n-2] = an1
	a[0] = -an
	a[1] = -an1
	return a, nil
}

// shapiroWilkPValue maps W to an approximate upper-tail p-value.
// n=3 is exact; 4-11 and >=12 use Royston's normalizing transformations.
func (d *Distributions) shapiroWilkPValue(w float64, n int) float64 {
	if n == 3 {
		p := (6 / math.Pi) * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Min(1, math.Max(0, p))
	}

	var z float64
	if n <= 11 {
		fn := float64(n)
		g := -2.273 + 0.459*fn
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		arg := g - math.Log(1-w)
		if arg <= 0 {
			return 0
		}
		z = (-math.Log(arg) - mu) / sigma
	} else {
		lnN := math.Log(float64(n))
		mu := -1.5861 - 0.31082*lnN - 0.083751*lnN*lnN + 0.0038915*lnN*lnN*lnN
		sigma := math.Exp(-0.4803 - 0.082676*lnN + 0.0030302*lnN*lnN)
		z = (math.Log(1-w) - mu) / sigma
	}

	return 1 - d.NormalCDF(z)
}
