package app

import (
	"vvengine/adapters/stats/attribute"
	"vvengine/adapters/stats/pipeline"
	"vvengine/adapters/stats/reliability"
	"vvengine/adapters/stats/tolerance"
	"vvengine/domain/core"
	"vvengine/domain/engine"
)

// EngineService is the single entry point over the four calculation modules.
// It normalizes raw caller inputs into domain value objects, dispatches, and
// wraps every outcome in an EngineResult that records the method actually
// used together with an echo of the inputs, so a report reader can reproduce
// the calculation without access to the original request.
type EngineService struct {
	sizer       *attribute.Sizer
	tolerance   *tolerance.Calculator
	pipeline    *pipeline.Analyzer
	reliability *reliability.Calculator
}

// NewEngineService creates an engine service with default calculators
func NewEngineService() *EngineService {
	return &EngineService{
		sizer:       attribute.NewSizer(),
		tolerance:   tolerance.NewCalculator(),
		pipeline:    pipeline.NewAnalyzer(),
		reliability: reliability.NewCalculator(),
	}
}

// AttributeRequest defines inputs for an attribute sample-size calculation.
// A nil AllowableFailures requests the c=0..3 sensitivity sweep.
type AttributeRequest struct {
	Confidence        float64 `json:"confidence"`
	Reliability       float64 `json:"reliability"`
	AllowableFailures *int    `json:"allowable_failures,omitempty"`
}

// ToleranceRequest defines inputs for a variables tolerance-limit analysis
type ToleranceRequest struct {
	Values      []float64        `json:"values"`
	Confidence  float64          `json:"confidence"`
	Reliability float64          `json:"reliability"`
	Sidedness   core.Sidedness   `json:"sidedness"`
	SpecLimits  *core.SpecLimits `json:"spec_limits,omitempty"`
}

// PipelineRequest defines inputs for a non-normal pipeline run
type PipelineRequest struct {
	Values      []float64        `json:"values"`
	Confidence  float64          `json:"confidence"`
	Reliability float64          `json:"reliability"`
	Sidedness   core.Sidedness   `json:"sidedness"`
	Alpha       float64          `json:"alpha,omitempty"`
	SpecLimits  *core.SpecLimits `json:"spec_limits,omitempty"`
}

// ZeroFailureRequest defines inputs for a zero-failure duration calculation
type ZeroFailureRequest struct {
	Confidence     float64 `json:"confidence"`
	UnitMultiplier float64 `json:"unit_multiplier"`
}

// AccelerationRequest defines inputs for an Arrhenius acceleration factor
type AccelerationRequest struct {
	ActivationEnergyEV float64 `json:"activation_energy_ev"`
	TUseK              float64 `json:"t_use_k"`
	TTestK             float64 `json:"t_test_k"`
}

// ComputeAttribute runs a single attribute sample-size calculation or, when
// AllowableFailures is absent, the c=0..3 sensitivity sweep.
func (s *EngineService) ComputeAttribute(req AttributeRequest) (*engine.EngineResult, error) {
	spec, err := core.NewConfidenceReliability(req.Confidence, req.Reliability)
	if err != nil {
		return nil, err
	}

	inputs := map[string]interface{}{
		"confidence":  req.Confidence,
		"reliability": req.Reliability,
	}

	if req.AllowableFailures == nil {
		results, err := s.sizer.SensitivitySweep(spec)
		if err != nil {
			return nil, err
		}
		inputs["allowable_failures"] = nil
		res := s.newResult(engine.ModuleAttribute, engine.MethodAttributeSweep, inputs)
		res.AttributeSweep = results
		return res, nil
	}

	single, err := s.sizer.SampleSize(spec, *req.AllowableFailures)
	if err != nil {
		return nil, err
	}
	inputs["allowable_failures"] = *req.AllowableFailures
	res := s.newResult(engine.ModuleAttribute, single.Method, inputs)
	res.Attribute = &single
	return res, nil
}

// ComputeTolerance runs a variables tolerance-limit analysis on a sample that
// the caller already accepts as normal. Spec limits, when given, add the
// PASS/FAIL comparison and the Ppk index to the result.
func (s *EngineService) ComputeTolerance(req ToleranceRequest) (*engine.EngineResult, error) {
	spec, err := core.NewConfidenceReliability(req.Confidence, req.Reliability)
	if err != nil {
		return nil, err
	}
	if !req.Sidedness.Valid() {
		return nil, core.NewDomainError("sidedness", req.Sidedness, `"one" or "two"`)
	}
	sample, err := core.NewSample(req.Values)
	if err != nil {
		return nil, err
	}

	analysis, err := s.tolerance.Analyze(sample, spec, req.Sidedness, req.SpecLimits)
	if err != nil {
		return nil, err
	}

	inputs := map[string]interface{}{
		"values":      sample.Values(),
		"confidence":  req.Confidence,
		"reliability": req.Reliability,
		"sidedness":   req.Sidedness,
	}
	if req.SpecLimits != nil {
		inputs["spec_limits"] = *req.SpecLimits
	}

	res := s.newResult(engine.ModuleTolerance, engine.MethodToleranceInterval, inputs)
	res.Tolerance = analysis
	return res, nil
}

// ComputePipeline runs the non-normal remediation pipeline end to end.
// The envelope's Method reflects the terminal state actually reached, which
// may be the Wilks fallback rather than anything the caller requested.
func (s *EngineService) ComputePipeline(req PipelineRequest) (*engine.EngineResult, error) {
	spec, err := core.NewConfidenceReliability(req.Confidence, req.Reliability)
	if err != nil {
		return nil, err
	}
	sample, err := core.NewSample(req.Values)
	if err != nil {
		return nil, err
	}

	analysis, err := s.pipeline.Analyze(sample, pipeline.Options{
		Spec:       spec,
		Sidedness:  req.Sidedness,
		Alpha:      req.Alpha,
		SpecLimits: req.SpecLimits,
	})
	if err != nil {
		return nil, err
	}

	inputs := map[string]interface{}{
		"values":      sample.Values(),
		"confidence":  req.Confidence,
		"reliability": req.Reliability,
		"sidedness":   req.Sidedness,
		"alpha":       analysis.RawVerdicts[0].Alpha,
	}
	if req.SpecLimits != nil {
		inputs["spec_limits"] = *req.SpecLimits
	}

	res := s.newResult(engine.ModulePipeline, analysis.Method, inputs)
	res.Pipeline = analysis
	return res, nil
}

// ComputeZeroFailureDuration runs the zero-failure demonstration calculation
func (s *EngineService) ComputeZeroFailureDuration(req ZeroFailureRequest) (*engine.EngineResult, error) {
	out, err := s.reliability.ZeroFailureDuration(req.Confidence, req.UnitMultiplier)
	if err != nil {
		return nil, err
	}

	res := s.newResult(engine.ModuleReliability, engine.MethodZeroFailure, map[string]interface{}{
		"confidence":      req.Confidence,
		"unit_multiplier": req.UnitMultiplier,
	})
	res.Reliability = &out
	return res, nil
}

// ComputeAccelerationFactor runs the Arrhenius acceleration calculation
func (s *EngineService) ComputeAccelerationFactor(req AccelerationRequest) (*engine.EngineResult, error) {
	out, err := s.reliability.AccelerationFactor(req.ActivationEnergyEV, req.TUseK, req.TTestK)
	if err != nil {
		return nil, err
	}

	res := s.newResult(engine.ModuleReliability, engine.MethodArrhenius, map[string]interface{}{
		"activation_energy_ev": req.ActivationEnergyEV,
		"t_use_k":              req.TUseK,
		"t_test_k":             req.TTestK,
	})
	res.Reliability = &out
	return res, nil
}

func (s *EngineService) newResult(module engine.Module, method engine.Method, inputs map[string]interface{}) *engine.EngineResult {
	return &engine.EngineResult{
		ID:         core.NewResultID(),
		Module:     module,
		Method:     method,
		Inputs:     inputs,
		ComputedAt: core.Now(),
	}
}
