package engine

import (
	"fmt"

	"vvengine/domain/core"
)

// ============================================================================
// METHOD TAGS (Canonical, consumed by reports - never rename)
// ============================================================================

// Method records the statistical procedure actually used for a result.
// Mandatory on every result envelope: when the non-normal pipeline falls
// back, the report must show the fallback, not the requested method.
type Method string

const (
	MethodSuccessRun         Method = "success-run"
	MethodBinomialSearch     Method = "binomial-search"
	MethodAttributeSweep     Method = "attribute-sweep"
	MethodParametricDirect   Method = "parametric-direct"
	MethodNonParametricWilks Method = "non-parametric-wilks"
	MethodZeroFailure        Method = "zero-failure-chi-squared"
	MethodArrhenius          Method = "arrhenius"
	MethodToleranceInterval  Method = "tolerance-interval"
)

// MethodParametricTransformed tags a pipeline result that succeeded on a
// transformed scale, e.g. "parametric-transformed:box-cox".
func MethodParametricTransformed(kind TransformKind) Method {
	return Method("parametric-transformed:" + string(kind))
}

// Module identifies which engine module produced a result
type Module string

const (
	ModuleAttribute   Module = "attribute"
	ModuleTolerance   Module = "tolerance"
	ModulePipeline    Module = "pipeline"
	ModuleReliability Module = "reliability"
)

// TransformKind names a normalizing transformation candidate
type TransformKind string

const (
	TransformIdentity TransformKind = "identity"
	TransformBoxCox   TransformKind = "box-cox"
	TransformLog      TransformKind = "log"
	TransformSqrt     TransformKind = "sqrt"
)

// ============================================================================
// MODULE RESULTS (Value objects, one per spec module)
// ============================================================================

// AttributeResult is the outcome of a binomial sample-size calculation
type AttributeResult struct {
	AllowableFailures int     `json:"allowable_failures"`
	SampleSize        int     `json:"sample_size"`
	Confidence        float64 `json:"confidence"`
	Reliability       float64 `json:"reliability"`
	Method            Method  `json:"method"`
}

// ToleranceFactorResult carries a tolerance factor k with its provenance.
// Derived, not independently mutable.
type ToleranceFactorResult struct {
	Factor     float64        `json:"factor"`
	Sidedness  core.Sidedness `json:"sidedness"`
	SampleSize int            `json:"sample_size"`
}

// ToleranceLimits are the computed statistical interval bounds.
// One-sided intervals populate exactly one bound.
type ToleranceLimits struct {
	Lower     *float64       `json:"lower,omitempty"`
	Upper     *float64       `json:"upper,omitempty"`
	Sidedness core.Sidedness `json:"sidedness"`
}

// SpecComparison is the PASS/FAIL verdict of limits against spec limits
type SpecComparison struct {
	Pass   bool            `json:"pass"`
	Limits core.SpecLimits `json:"spec_limits"`
}

// ToleranceResult is the outcome of a variables tolerance-limit analysis
type ToleranceResult struct {
	Mean       float64               `json:"mean"`
	StdDev     float64               `json:"std_dev"`
	Factor     ToleranceFactorResult `json:"factor"`
	Limits     ToleranceLimits       `json:"limits"`
	Ppk        *float64              `json:"ppk,omitempty"`
	Comparison *SpecComparison       `json:"comparison,omitempty"`
}

// NormalityVerdict records one normality test outcome at a given alpha.
// Shapiro-Wilk carries a p-value; Anderson-Darling carries a critical value.
type NormalityVerdict struct {
	TestName      string   `json:"test_name"`
	Statistic     float64  `json:"statistic"`
	PValue        *float64 `json:"p_value,omitempty"`
	CriticalValue *float64 `json:"critical_value,omitempty"`
	Alpha         float64  `json:"alpha"`
	Accepted      bool     `json:"accepted"`
}

// TransformationAttempt records one candidate in the transformation search.
// A skipped candidate (e.g. non-positive data for log) has Applied=false and
// no verdicts; it is not a failed normality test.
type TransformationAttempt struct {
	Kind       TransformKind      `json:"kind"`
	Lambda     *float64           `json:"lambda,omitempty"`
	Applied    bool               `json:"applied"`
	SkipReason string             `json:"skip_reason,omitempty"`
	Verdicts   []NormalityVerdict `json:"verdicts,omitempty"`
	Accepted   bool               `json:"accepted"`
}

// OutlierScreen reports the Tukey-fence screen over the raw sample.
// Flagging is advisory: flagged points are reported, never auto-removed.
type OutlierScreen struct {
	Q1             float64 `json:"q1"`
	Q3             float64 `json:"q3"`
	IQR            float64 `json:"iqr"`
	LowerFence     float64 `json:"lower_fence"`
	UpperFence     float64 `json:"upper_fence"`
	FlaggedIndices []int   `json:"flagged_indices,omitempty"`
}

// PipelineResult is the full audit trail of one non-normal pipeline run
type PipelineResult struct {
	Method            Method                  `json:"method"`
	SampleSize        int                     `json:"sample_size"`
	Mean              float64                 `json:"mean"`
	StdDev            float64                 `json:"std_dev"`
	Screen            OutlierScreen           `json:"outlier_screen"`
	RawVerdicts       []NormalityVerdict      `json:"raw_verdicts"`
	Attempts          []TransformationAttempt `json:"attempts,omitempty"`
	Factor            *ToleranceFactorResult  `json:"factor,omitempty"`
	Limits            ToleranceLimits         `json:"limits"`
	TransformedLimits *ToleranceLimits        `json:"transformed_limits,omitempty"`
	WilksConfidence   *float64                `json:"wilks_confidence,omitempty"`
	Comparison        *SpecComparison         `json:"comparison,omitempty"`
}

// ReliabilityKind distinguishes the two reliability calculations
type ReliabilityKind string

const (
	ReliabilityZeroFailure  ReliabilityKind = "zero_failure_duration"
	ReliabilityAcceleration ReliabilityKind = "acceleration_factor"
)

// ReliabilityResult is the outcome of a reliability demonstration calculation
type ReliabilityResult struct {
	Kind  ReliabilityKind `json:"kind"`
	Value float64         `json:"value"`
}

// ============================================================================
// ENGINE RESULT (Uniform envelope for every caller)
// ============================================================================

// EngineResult is the discriminated union over module outputs. Exactly one
// payload field is populated; Module and Method say which and how.
type EngineResult struct {
	ID         core.ResultID          `json:"id"`
	Module     Module                 `json:"module"`
	Method     Method                 `json:"method"`
	Inputs     map[string]interface{} `json:"inputs"`
	ComputedAt core.Timestamp         `json:"computed_at"`

	Attribute      *AttributeResult   `json:"attribute,omitempty"`
	AttributeSweep []AttributeResult  `json:"attribute_sweep,omitempty"`
	Tolerance      *ToleranceResult   `json:"tolerance,omitempty"`
	Pipeline       *PipelineResult    `json:"pipeline,omitempty"`
	Reliability    *ReliabilityResult `json:"reliability,omitempty"`
}

// Validate checks the envelope invariants: method present, exactly one payload
func (r *EngineResult) Validate() error {
	if r.ID.IsEmpty() {
		return fmt.Errorf("engine result ID must be set")
	}
	if r.Method == "" {
		return fmt.Errorf("engine result method must be set")
	}
	if r.Module == "" {
		return fmt.Errorf("engine result module must be set")
	}
	populated := 0
	if r.Attribute != nil {
		populated++
	}
	if len(r.AttributeSweep) > 0 {
		populated++
	}
	if r.Tolerance != nil {
		populated++
	}
	if r.Pipeline != nil {
		populated++
	}
	if r.Reliability != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("engine result must carry exactly one payload, got %d", populated)
	}
	return nil
}
