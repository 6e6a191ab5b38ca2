package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/plancoach/internal/models"
)

type planResponse struct {
	Plan    models.WorkoutPlan `json:"plan"`
	Summary models.PlanSummary `json:"summary"`
}

// handleBuildPlan turns form input (abbreviated units, defaults) into a
// validated plan.
func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var form models.PlanForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	plan, err := models.BuildPlan(form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Plan: plan, Summary: models.SummarizePlan(plan)})
}

func (s *Server) handlePreviewPlan(w http.ResponseWriter, r *http.Request) {
	var plan models.WorkoutPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	plan.NormalizeUnits()
	if err := plan.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Plan: plan, Summary: models.SummarizePlan(plan)})
}

func (s *Server) handlePace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	distance, err := strconv.ParseFloat(q.Get("distance"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "distance must be a number"})
		return
	}
	var t float64
	if v := q.Get("time"); v != "" {
		t, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "time must be a number"})
			return
		}
	}

	du := models.CanonicalUnit(models.GoalDistance, q.Get("distance_unit"))
	tu := models.CanonicalUnit(models.GoalTime, q.Get("time_unit"))
	writeJSON(w, http.StatusOK, map[string]string{
		"pace":  models.Pace(distance, t),
		"label": models.Abbreviation(du) + "/" + models.Abbreviation(tu),
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	goalType := models.GoalType(r.URL.Query().Get("type"))
	catalog := models.UnitCatalog()
	if goalType == "" {
		writeJSON(w, http.StatusOK, catalog)
		return
	}
	if !goalType.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown goal type: " + string(goalType)})
		return
	}
	out := []models.UnitCatalogEntry{}
	for _, e := range catalog {
		if e.GoalType == goalType {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
