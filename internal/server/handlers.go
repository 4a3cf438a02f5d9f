package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/export"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/aithlete/aithlete/internal/storage"
)

// maxPlanBytes bounds request bodies carrying a plan.
const maxPlanBytes = 1 << 20

// User-facing messages. Diagnostic detail stays in the log.
const (
	msgGenerationFailed = "plan could not be generated"
	msgInvalidPlan      = "invalid workout plan"
	msgRenderFailed     = "could not render workout plan"
	msgFillAllFields    = "Please fill all fields"
	msgEnterQuestion    = "Please enter a question."
)

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	start := time.Now()
	plan, err := s.coach.GeneratePlan(r.Context(), req)
	go s.logGeneration(storage.KindPlan, planOf(plan), err, time.Since(start))
	if err != nil {
		status, msg := errorResponse(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}

	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"plan": json.RawMessage(plan.Raw)})
}

func (s *Server) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPlanBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	out, err := s.renderPDF(data)
	if err != nil {
		status, msg := errorResponse(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeAttachment(w, render.ContentType, render.FileName, out)
}

func (s *Server) handleRenderXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPlanBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	out, err := s.renderXLSX(data)
	if err != nil {
		status, msg := errorResponse(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeAttachment(w, export.ContentType, export.FileName, out)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	start := time.Now()
	answer, err := s.coach.Ask(r.Context(), body.Question)
	if !errors.Is(err, coach.ErrEmptyQuestion) {
		go s.logGeneration(storage.KindAdvice, nil, err, time.Since(start))
	}
	if err != nil {
		status, msg := errorResponse(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleGenerationLogs(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultLogLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.store.RecentGenerationLogs(r.Context(), limit)
	if err != nil {
		s.log.Error("querying generation logs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load generation logs"})
		return
	}
	if logs == nil {
		logs = []storage.GenerationLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// renderPDF parses and renders a plan, recording the attempt in the generation log.
func (s *Server) renderPDF(data []byte) ([]byte, error) {
	start := time.Now()
	plan, err := models.ParsePlan(data)
	if err != nil {
		s.log.Warn("rejected workout plan", "error", err)
		return nil, err
	}
	out, err := s.renderer.Render(plan)
	go s.logGeneration(storage.KindRenderPDF, plan, err, time.Since(start))
	return out, err
}

// renderXLSX parses a plan and writes it as a workbook.
func (s *Server) renderXLSX(data []byte) ([]byte, error) {
	start := time.Now()
	plan, err := models.ParsePlan(data)
	if err != nil {
		s.log.Warn("rejected workout plan", "error", err)
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(plan, &buf); err != nil {
		err = &render.RenderError{Err: err}
		s.log.Error("xlsx export failed", "error", err)
		go s.logGeneration(storage.KindRenderXLSX, plan, err, time.Since(start))
		return nil, err
	}
	go s.logGeneration(storage.KindRenderXLSX, plan, nil, time.Since(start))
	return buf.Bytes(), nil
}

// errorResponse maps a pipeline error to a status code and a short message.
// GenerationError is checked first because it may wrap a PlanParseError.
func errorResponse(err error) (int, string) {
	var (
		reqErr   *coach.RequestError
		genErr   *coach.GenerationError
		parseErr *models.PlanParseError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.Is(err, coach.ErrEmptyQuestion):
		return http.StatusBadRequest, msgEnterQuestion
	case errors.As(err, &genErr):
		if genErr.Task == "advice" {
			return http.StatusBadGateway, coach.AdviceUnavailableMessage
		}
		return http.StatusBadGateway, msgGenerationFailed
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, msgInvalidPlan
	case errors.Is(err, render.ErrRender):
		return http.StatusInternalServerError, msgRenderFailed
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func planOf(g *coach.GeneratedPlan) *models.Plan {
	if g == nil {
		return nil
	}
	return g.Plan
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
