package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
	"github.com/makosai/backend/internal/user"
	"github.com/makosai/backend/internal/worksheet"
)

type WorksheetHandler struct {
	worksheets *worksheet.Service
}

func NewWorksheetHandler(worksheets *worksheet.Service) *WorksheetHandler {
	return &WorksheetHandler{worksheets: worksheets}
}

type GenerationResponse struct {
	Success   bool              `json:"success"`
	Worksheet *models.Worksheet `json:"worksheet,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (h *WorksheetHandler) Generate(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	var input models.WorksheetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, GenerationResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	ws, err := h.worksheets.Generate(r.Context(), dbUser.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, worksheet.ErrTopicRequired):
			writeJSONStatus(w, http.StatusBadRequest, GenerationResponse{
				Success: false,
				Error:   "Topic is required",
			})
		case errors.Is(err, credits.ErrInsufficientCredits):
			writeJSONStatus(w, http.StatusPaymentRequired, GenerationResponse{
				Success: false,
				Error:   "Insufficient credits",
			})
		default:
			logger.Log.Error("worksheet generation failed",
				"user_id", dbUser.ID, "error", err)
			writeJSONStatus(w, http.StatusInternalServerError, GenerationResponse{
				Success: false,
				Error:   "Failed to generate worksheet",
			})
		}
		return
	}

	writeJSON(w, GenerationResponse{
		Success:   true,
		Worksheet: ws,
	})
}

func (h *WorksheetHandler) List(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	worksheets, err := h.worksheets.List(r.Context(), dbUser.ID)
	if err != nil {
		logger.Log.Error("failed to list worksheets", "user_id", dbUser.ID, "error", err)
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"success":    true,
		"worksheets": worksheets,
	})
}

func (h *WorksheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	ws, err := h.worksheets.Get(r.Context(), dbUser.ID, mux.Vars(r)["worksheetID"])
	if err != nil {
		if errors.Is(err, worksheet.ErrWorksheetNotFound) {
			http.Error(w, "Worksheet not found", http.StatusNotFound)
			return
		}
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "worksheet": ws})
}

func (h *WorksheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	var updates models.Worksheet
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ws, err := h.worksheets.Update(r.Context(), dbUser.ID, mux.Vars(r)["worksheetID"], updates)
	if err != nil {
		if errors.Is(err, worksheet.ErrWorksheetNotFound) {
			http.Error(w, "Worksheet not found", http.StatusNotFound)
			return
		}
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "worksheet": ws})
}

func (h *WorksheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	if err := h.worksheets.Delete(r.Context(), dbUser.ID, mux.Vars(r)["worksheetID"]); err != nil {
		if errors.Is(err, worksheet.ErrWorksheetNotFound) {
			http.Error(w, "Worksheet not found", http.StatusNotFound)
			return
		}
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "message": "Worksheet deleted"})
}

func (h *WorksheetHandler) Download(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	ws, err := h.worksheets.RecordDownload(r.Context(), dbUser.ID, mux.Vars(r)["worksheetID"])
	if err != nil {
		if errors.Is(err, worksheet.ErrWorksheetNotFound) {
			http.Error(w, "Worksheet not found", http.StatusNotFound)
			return
		}
		http.Error(w, internalServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "worksheet": ws})
}

// Options returns the generator form catalog: subjects, grades, question
// types and difficulties.
func (h *WorksheetHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"success": true,
		"subjects": []map[string]string{
			{"value": "math", "label": "Mathematics"},
			{"value": "science", "label": "Science"},
			{"value": "english", "label": "English"},
			{"value": "history", "label": "History"},
			{"value": "geography", "label": "Geography"},
			{"value": "biology", "label": "Biology"},
			{"value": "chemistry", "label": "Chemistry"},
			{"value": "physics", "label": "Physics"},
		},
		"grades": []map[string]string{
			{"value": "K", "label": "Kindergarten"},
			{"value": "1", "label": "1st Grade"},
			{"value": "2", "label": "2nd Grade"},
			{"value": "3", "label": "3rd Grade"},
			{"value": "4", "label": "4th Grade"},
			{"value": "5", "label": "5th Grade"},
			{"value": "6", "label": "6th Grade"},
			{"value": "7", "label": "7th Grade"},
			{"value": "8", "label": "8th Grade"},
			{"value": "9", "label": "9th Grade"},
			{"value": "10", "label": "10th Grade"},
			{"value": "11", "label": "11th Grade"},
			{"value": "12", "label": "12th Grade"},
		},
		"question_types": []map[string]string{
			{"value": "multiple_choice", "label": "Multiple Choice"},
			{"value": "fill_blank", "label": "Fill in the Blank"},
			{"value": "true_false", "label": "True/False"},
			{"value": "matching", "label": "Matching"},
			{"value": "short_answer", "label": "Short Answer"},
			{"value": "essay", "label": "Essay"},
		},
		"difficulties": []map[string]string{
			{"value": "easy", "label": "Easy"},
			{"value": "medium", "label": "Medium"},
			{"value": "hard", "label": "Hard"},
		},
	})
}
