package server

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

type scanRequest struct {
	Root string `json:"root"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type aliasesResponse struct {
	Enabled bool            `json:"enabled"`
	Aliases []aliases.Entry `json:"aliases"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAliases(w http.ResponseWriter, r *http.Request) {
	table, err := pipeline.LoadAliases(s.base.Aliases)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries := table.Entries()
	if entries == nil {
		entries = []aliases.Entry{}
	}
	writeJSON(w, http.StatusOK, aliasesResponse{Enabled: s.base.Aliases.Enabled, Aliases: entries})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Root == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "root is required"))
		return
	}
	if info, err := os.Stat(req.Root); err != nil || !info.IsDir() {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "root %s is not a readable directory", req.Root))
		return
	}

	opts := s.base
	opts.Root = req.Root
	a, err := s.runner.Analyze(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Report())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorResponse{
		Code:      string(code),
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func statusFor(code errors.Code) int {
	switch {
	case code.Invalid():
		return http.StatusBadRequest
	case code == errors.ErrCodeFileRead:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
