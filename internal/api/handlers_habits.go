package api

import (
	"net/http"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/models"
)

type habitResponse struct {
	Message string       `json:"message"`
	Habit   models.Habit `json:"habit"`
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := userFrom(r.Context())
	if userID != user.ID {
		writeError(w, r, apperrors.Forbidden("cannot list another user's habits"))
		return
	}

	list, err := s.habits.ListHabits(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in habits.HabitInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	habit, err := s.habits.CreateHabit(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, habitResponse{Message: "habit created", Habit: habit})
}

func (s *Server) handleHabitDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.habits.GetHabitWithRecords(r.Context(), userFrom(r.Context()).ID, id, s.cfg.WindowDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if detail.Records == nil {
		detail.Records = []models.HabitRecord{}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in habits.HabitInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	habit, err := s.habits.UpdateHabit(r.Context(), userFrom(r.Context()).ID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{Message: "habit updated", Habit: habit})
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.habits.DeleteHabit(r.Context(), userFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "habit deleted"})
}
