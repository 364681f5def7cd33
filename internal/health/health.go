// Package health serves liveness and readiness probes.
//
// /healthz always answers 200. /readyz answers 200 only when every
// registered Checker passes; the body lists each check by name.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const checkTimeout = 5 * time.Second

// Checker is a named dependency probe.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the probes. The checker list is fixed at construction.
type Handler struct {
	checkers []Checker
}

// New creates a Handler evaluating checkers in order.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every checker with a bounded context.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true
	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()
		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			allOK = false
			continue
		}
		checks[c.Name] = "ok"
	}

	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
