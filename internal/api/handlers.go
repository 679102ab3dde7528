package api

import (
	"encoding/json"
	"net/http"

	"vvengine/app"
	"vvengine/domain/core"
	"vvengine/domain/engine"
	apperrors "vvengine/internal/errors"
)

// errorResponse is the JSON error body: stable code plus the engine's own
// message, which names the offending parameter and the valid range.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// toleranceFactorRequest asks for a bare factor without a sample
type toleranceFactorRequest struct {
	SampleSize  int            `json:"sample_size"`
	Confidence  float64        `json:"confidence"`
	Reliability float64        `json:"reliability"`
	Sidedness   core.Sidedness `json:"sidedness"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAttributeSampleSize(w http.ResponseWriter, r *http.Request) {
	var req app.AttributeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.AllowableFailures == nil {
		s.writeError(w, apperrors.InvalidInput("allowable_failures is required; use /api/attribute/sweep for the c=0..3 sweep"))
		return
	}

	res, err := s.engine.ComputeAttribute(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAttributeSweep(w http.ResponseWriter, r *http.Request) {
	var req app.AttributeRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.AllowableFailures = nil

	res, err := s.engine.ComputeAttribute(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleToleranceFactors(w http.ResponseWriter, r *http.Request) {
	var req toleranceFactorRequest
	if !s.decode(w, r, &req) {
		return
	}

	spec, err := core.NewConfidenceReliability(req.Confidence, req.Reliability)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !req.Sidedness.Valid() {
		s.writeError(w, core.NewDomainError("sidedness", req.Sidedness, `"one" or "two"`))
		return
	}

	factor, err := s.factorFor(req.SampleSize, spec, req.Sidedness)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, factor)
}

func (s *Server) handleToleranceAnalyze(w http.ResponseWriter, r *http.Request) {
	var req app.ToleranceRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.ComputeTolerance(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePipelineAnalyze(w http.ResponseWriter, r *http.Request) {
	var req app.PipelineRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.ComputePipeline(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleZeroFailure(w http.ResponseWriter, r *http.Request) {
	var req app.ZeroFailureRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.ComputeZeroFailureDuration(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAcceleration(w http.ResponseWriter, r *http.Request) {
	var req app.AccelerationRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.ComputeAccelerationFactor(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) factorFor(n int, spec core.ConfidenceReliabilitySpec, side core.Sidedness) (engine.ToleranceFactorResult, error) {
	if side == core.OneSided {
		return s.tolerance.OneSidedFactor(n, spec)
	}
	return s.tolerance.TwoSidedFactor(n, spec)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, apperrors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromEngine(err)

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeInvalidInput, apperrors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case apperrors.CodeDomainError, apperrors.CodeInsufficientData:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("engine failure: %v", appErr)
	}
	s.writeJSON(w, status, errorResponse{Code: appErr.Code, Error: appErr.Message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed: %v", err)
	}
}
