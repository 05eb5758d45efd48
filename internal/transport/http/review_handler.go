package http

import (
	"encoding/json"
	"log"
	"net/http"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/domain"
)

// requiredFields are validated in this order; the response names the first
// missing one. keyword and comment are optional and default to empty.
var requiredFields = []string{
	"review_id", "question_id", "question_set", "question_index",
	"category", "question_text", "reviewer_name", "answer",
	"correct_answer", "is_correct", "timestamp",
}

// ReviewHandler accepts result submissions (including comment-amendment
// resubmissions) and upserts them into the shared review log.
type ReviewHandler struct {
	log *app.ReviewLog
}

func NewReviewHandler(reviewLog *app.ReviewLog) *ReviewHandler {
	return &ReviewHandler{log: reviewLog}
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ReviewID     string `json:"review_id"`
	TotalReviews int    `json:"total_reviews"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ServeHTTP handles POST submissions and the OPTIONS pre-flight. Pre-flight
// requests get a success response with permissive CORS headers and no body
// processing.
func (h *ReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		writeJSON(w, http.StatusOK, map[string]string{"message": "CORS preflight successful"})
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "Method not allowed",
			Message: "use POST",
		})
	}
}

func (h *ReviewHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation error",
			Message: "invalid JSON body",
		})
		return
	}

	for _, field := range requiredFields {
		if _, ok := fields[field]; !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "Validation error",
				Message: "Missing required field: " + field,
			})
			return
		}
	}

	raw, _ := json.Marshal(fields)
	var rec domain.ReviewResult
	if err := json.Unmarshal(raw, &rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation error",
			Message: err.Error(),
		})
		return
	}

	total, err := h.log.Upsert(r.Context(), rec)
	if err != nil {
		log.Printf("upsert review %s: %v", rec.ReviewID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		Message:      "Review saved successfully",
		ReviewID:     rec.ReviewID,
		TotalReviews: total,
	})
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
