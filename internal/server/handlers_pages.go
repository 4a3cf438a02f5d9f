package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/export"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/aithlete/aithlete/internal/storage"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "plan.html", planPage{Title: "Workout Plan", Options: models.Options()})
}

func (s *Server) handlePlanForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := models.PlanRequest{
		Goal:         r.PostForm.Get("goal"),
		Level:        r.PostForm.Get("level"),
		Commitment:   r.PostForm.Get("commitment"),
		WorkoutTypes: r.PostForm["workout_types"],
		Equipment:    r.PostForm.Get("equipment"),
		Duration:     r.PostForm.Get("duration"),
	}
	page := planPage{Title: "Workout Plan", Options: models.Options(), Form: req}

	if !req.Complete() {
		page.Error = msgFillAllFields
		s.renderPage(w, http.StatusBadRequest, "plan.html", page)
		return
	}

	start := time.Now()
	plan, err := s.coach.GeneratePlan(r.Context(), req)
	go s.logGeneration(storage.KindPlan, planOf(plan), err, time.Since(start))
	if err != nil {
		status, _ := errorResponse(err)
		var reqErr *coach.RequestError
		if errors.As(err, &reqErr) {
			page.Error = reqErr.Err.Error()
		} else {
			page.Error = coach.PlanUnavailableMessage
		}
		s.renderPage(w, status, "plan.html", page)
		return
	}

	page.PlanJSON = plan.Raw
	s.renderPage(w, http.StatusOK, "plan.html", page)
}

func (s *Server) handlePlanPDFForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	out, err := s.renderPDF([]byte(r.PostForm.Get("plan")))
	if err != nil {
		status, msg := errorResponse(err)
		http.Error(w, msg, status)
		return
	}
	writeAttachment(w, render.ContentType, render.FileName, out)
}

func (s *Server) handlePlanXLSXForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	out, err := s.renderXLSX([]byte(r.PostForm.Get("plan")))
	if err != nil {
		status, msg := errorResponse(err)
		http.Error(w, msg, status)
		return
	}
	writeAttachment(w, export.ContentType, export.FileName, out)
}

func (s *Server) handleAdvicePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "advice.html", advicePage{Title: "Expert Advice"})
}

func (s *Server) handleAdviceForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	page := advicePage{Title: "Expert Advice", Question: r.PostForm.Get("question")}

	start := time.Now()
	answer, err := s.coach.Ask(r.Context(), page.Question)
	switch {
	case errors.Is(err, coach.ErrEmptyQuestion):
		page.Error = msgEnterQuestion
		s.renderPage(w, http.StatusBadRequest, "advice.html", page)
		return
	case err != nil:
		go s.logGeneration(storage.KindAdvice, nil, err, time.Since(start))
		page.Error = coach.AdviceUnavailableMessage
		s.renderPage(w, http.StatusBadGateway, "advice.html", page)
		return
	}

	go s.logGeneration(storage.KindAdvice, nil, nil, time.Since(start))
	page.Answer = answer
	s.renderPage(w, http.StatusOK, "advice.html", page)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	if err := s.pages.render(w, status, name, data); err != nil {
		s.log.Error("rendering page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
