package api

import (
	"net/http"

	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/models"
)

type recordResponse struct {
	Message string             `json:"message,omitempty"`
	Record  models.HabitRecord `json:"record"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	habitID, err := pathID(r, "habitId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in habits.RecordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	record, err := s.habits.CreateRecord(r.Context(), userFrom(r.Context()).ID, habitID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Message: "record created", Record: record})
}

// handleGetRecords returns the record for ?date= as {"record": ...} or {},
// or every record of the habit newest first when no date is given
func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	habitID, err := pathID(r, "habitId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner := userFrom(r.Context()).ID

	query := r.URL.Query()
	if query.Has("date") {
		record, err := s.habits.GetRecordForDate(r.Context(), owner, habitID, query.Get("date"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if record == nil {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, recordResponse{Record: *record})
		return
	}

	records, err := s.habits.ListRecords(r.Context(), owner, habitID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []models.HabitRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	habitID, err := pathID(r, "habitId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordID, err := pathID(r, "recordId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.habits.DeleteRecord(r.Context(), userFrom(r.Context()).ID, habitID, recordID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "record deleted"})
}
