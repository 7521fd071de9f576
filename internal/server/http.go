package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// statusForKind maps an error kind to its HTTP status.
var statusForKind = map[model.Kind]int{
	model.KindUnauthenticated:  http.StatusUnauthorized,
	model.KindForbidden:        http.StatusForbidden,
	model.KindNotFound:         http.StatusNotFound,
	model.KindConflict:         http.StatusConflict,
	model.KindStaleEvent:       http.StatusUnprocessableEntity,
	model.KindUnknownEventType: http.StatusUnprocessableEntity,
	model.KindInvalidSkill:     http.StatusBadRequest,
	model.KindInvalidInput:     http.StatusBadRequest,
	model.KindUnavailable:      http.StatusBadGateway,
	model.KindInternal:         http.StatusInternalServerError,
}

// errorResponse is the registry and identity error body.
type errorResponse struct {
	Error         string     `json:"error"`
	Kind          model.Kind `json:"kind"`
	SkillsApplied bool       `json:"skills_applied,omitempty"`
}

// classify returns the status, kind and caller-facing message for err.
// Internal errors never leak their detail.
func classify(err error) (int, model.Kind, string) {
	kind := model.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if kind == model.KindInternal {
		msg = "internal server error"
	}
	return status, kind, msg
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes err as a plain error body.
func writeError(w http.ResponseWriter, err error) {
	status, kind, msg := classify(err)
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind, SkillsApplied: model.SkillsApplied(err)})
}

// writeEnvelope writes a successful envelope around data.
func writeEnvelope[T any](w http.ResponseWriter, status int, message string, data *T) {
	writeJSON(w, status, model.Envelope[T]{Success: true, Message: message, Data: data})
}

// writeEnvelopeError writes err as a failed envelope.
func writeEnvelopeError(w http.ResponseWriter, err error) {
	status, kind, msg := classify(err)
	writeJSON(w, status, model.Envelope[struct{}]{
		Message:       msg,
		Kind:          kind,
		SkillsApplied: model.SkillsApplied(err),
	})
}

// decodeJSON reads r's body into v. Malformed bodies wrap
// model.ErrInvalidInput.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", model.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", model.ErrInvalidInput, err)
	}
	return nil
}

// pathInt64 parses a positive integer path parameter.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", model.ErrInvalidInput, name, raw)
	}
	return n, nil
}
