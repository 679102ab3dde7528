package pipeline

import (
	"math"

	"vvengine/domain/core"
	"vvengine/domain/engine"
)

const (
	// Box-Cox lambda search bounds and golden-section budget.
	boxCoxLambdaMin = -5.0
	boxCoxLambdaMax = 5.0
	boxCoxMaxIter   = 100
	boxCoxTol       = 1e-6

	// lambdaZeroEps treats an optimized lambda this close to zero as the log
	// transform, matching the Box-Cox limit at lambda -> 0.
	lambdaZeroEps = 1e-10
)

// Transform is a normalizing transformation candidate. Forward returns the
// transformed values plus the optimized parameter (Box-Cox only); Inverse
// maps a single transformed-scale value back to the original scale.
type Transform interface {
	Kind() engine.TransformKind
	Applicable(values []float64) (bool, string)
	Forward(values []float64) ([]float64, *float64, error)
	Inverse(y float64, lambda *float64) (float64, error)
}

func allPositive(values []float64) bool {
	for _, v := range values {
		if v <= 0 {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// Natural log
// ----------------------------------------------------------------------------

// LogTransform is the natural-log candidate; requires strictly positive data.
type LogTransform struct{}

func NewLogTransform() *LogTransform { return &LogTransform{} }

func (*LogTransform) Kind() engine.TransformKind { return engine.TransformLog }

func (*LogTransform) Applicable(values []float64) (bool, string) {
	if !allPositive(values) {
		return false, "log requires strictly positive data"
	}
	return true, ""
}

func (*LogTransform) Forward(values []float64) ([]float64, *float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return nil, nil, core.NewDomainError("sample", v, "strictly positive values for log")
		}
		out[i] = math.Log(v)
	}
	return out, nil, nil
}

func (*LogTransform) Inverse(y float64, _ *float64) (float64, error) {
	return math.Exp(y), nil
}

// ----------------------------------------------------------------------------
// Square root
// ----------------------------------------------------------------------------

// SqrtTransform is the square-root candidate; requires strictly positive data.
type SqrtTransform struct{}

func NewSqrtTransform() *SqrtTransform { return &SqrtTransform{} }

func (*SqrtTransform) Kind() engine.TransformKind { return engine.TransformSqrt }

func (*SqrtTransform) Applicable(values []float64) (bool, string) {
	if !allPositive(values) {
		return false, "square root requires strictly positive data"
	}
	return true, ""
}

func (*SqrtTransform) Forward(values []float64) ([]float64, *float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return nil, nil, core.NewDomainError("sample", v, "strictly positive values for sqrt")
		}
		out[i] = math.Sqrt(v)
	}
	return out, nil, nil
}

func (*SqrtTransform) Inverse(y float64, _ *float64) (float64, error) {
	if y < 0 {
		return 0, core.NewDomainError("limit", y, "non-negative transformed limit for sqrt inverse")
	}
	return y * y, nil
}

// ----------------------------------------------------------------------------
// Box-Cox
// ----------------------------------------------------------------------------

// BoxCoxTransform optimizes lambda by maximizing the profile log-likelihood
// over [-5, 5] with a deterministic golden-section search.
type BoxCoxTransform struct{}

func NewBoxCoxTransform() *BoxCoxTransform { return &BoxCoxTransform{} }

func (*BoxCoxTransform) Kind() engine.TransformKind { return engine.TransformBoxCox }

func (*BoxCoxTransform) Applicable(values []float64) (bool, string) {
	if !allPositive(values) {
		return false, "Box-Cox requires strictly positive data"
	}
	return true, ""
}

func (*BoxCoxTransform) Forward(values []float64) ([]float64, *float64, error) {
	if !allPositive(values) {
		return nil, nil, core.NewDomainError("sample", "non-positive value", "strictly positive values for Box-Cox")
	}

	lambda, err := optimizeBoxCoxLambda(values)
	if err != nil {
		return nil, nil, err
	}
	return boxCoxForward(values, lambda), &lambda, nil
}

func (*BoxCoxTransform) Inverse(y float64, lambda *float64) (float64, error) {
	if lambda == nil {
		return 0, core.NewDomainError("lambda", nil, "Box-Cox inverse needs the fitted lambda")
	}
	return boxCoxInverse(y, *lambda)
}

// boxCoxForward applies the Box-Cox transform with a fixed lambda.
// The lambda -> 0 limit is the natural log.
func boxCoxForward(values []float64, lambda float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.Abs(lambda) < lambdaZeroEps {
			out[i] = math.Log(v)
		} else {
			out[i] = (math.Pow(v, lambda) - 1) / lambda
		}
	}
	return out
}

// boxCoxInverse maps a transformed-scale value back: (lambda*y + 1)^(1/lambda),
// exp(y) at lambda = 0. The argument must stay inside the inverse's domain.
func boxCoxInverse(y, lambda float64) (float64, error) {
	if math.Abs(lambda) < lambdaZeroEps {
		return math.Exp(y), nil
	}
	base := lambda*y + 1
	if base <= 0 {
		return 0, core.NewDomainError("limit", y, "lambda*limit+1 > 0 for Box-Cox inverse")
	}
	return math.Pow(base, 1/lambda), nil
}

// boxCoxLogLikelihood is the profile log-likelihood of lambda:
// -n/2 * ln(sigma2_mle(z)) + (lambda-1) * sum(ln x).
func boxCoxLogLikelihood(values []float64, lambda float64) float64 {
	n := float64(len(values))
	z := boxCoxForward(values, lambda)

	mean := 0.0
	for _, v := range z {
		mean += v
	}
	mean /= n

	variance := 0.0
	for _, v := range z {
		diff := v - mean
		variance += diff * diff
	}
	variance /= n
	if variance <= 0 {
		return math.Inf(-1)
	}

	logSum := 0.0
	for _, v := range values {
		logSum += math.Log(v)
	}
	return -0.5*n*math.Log(variance) + (lambda-1)*logSum
}

// optimizeBoxCoxLambda runs a golden-section maximization over the bounded
// lambda range. Fully deterministic; the iteration budget is a hard bound.
func optimizeBoxCoxLambda(values []float64) (float64, error) {
	const phi = 0.6180339887498949 // (sqrt(5)-1)/2

	a, b := boxCoxLambdaMin, boxCoxLambdaMax
	c := b - phi*(b-a)
	d := a + phi*(b-a)
	fc := boxCoxLogLikelihood(values, c)
	fd := boxCoxLogLikelihood(values, d)

	for i := 0; i < boxCoxMaxIter; i++ {
		if b-a <= boxCoxTol {
			return 0.5 * (a + b), nil
		}
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - phi*(b-a)
			fc = boxCoxLogLikelihood(values, c)
		} else {
			a, c, fc = c, d, fd
			d = a + phi*(b-a)
			fd = boxCoxLogLikelihood(values, d)
		}
	}
	// The interval shrinks by a constant factor each step, so 100 iterations
	// always lands below tolerance; reaching here means a numeric anomaly.
	return 0, core.NewConvergenceError("Box-Cox lambda search", boxCoxMaxIter, boxCoxTol)
}
