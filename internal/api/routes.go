package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) routes(r *mux.Router) {
	r.Handle("/healthz", http.HandlerFunc(s.handleHealth)).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	r.Handle("/auth/register", s.limiter.middleware(http.HandlerFunc(s.handleRegister))).Methods(http.MethodPost)
	r.Handle("/auth/login", s.limiter.middleware(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)
	r.Handle("/auth/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	r.Handle("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)

	r.Handle("/habits", s.requireAuth(s.handleCreateHabit)).Methods(http.MethodPost)
	r.Handle("/habits/detail/{id:[0-9]+}", s.requireAuth(s.handleHabitDetail)).Methods(http.MethodGet)
	r.Handle("/habits/{userId:[0-9]+}", s.requireAuth(s.handleListHabits)).Methods(http.MethodGet)
	r.Handle("/habits/{id:[0-9]+}", s.requireAuth(s.handleUpdateHabit)).Methods(http.MethodPut)
	r.Handle("/habits/{id:[0-9]+}", s.requireAuth(s.handleDeleteHabit)).Methods(http.MethodDelete)

	r.Handle("/habits/{habitId:[0-9]+}/records", s.requireAuth(s.handleCreateRecord)).Methods(http.MethodPost)
	r.Handle("/habits/{habitId:[0-9]+}/records", s.requireAuth(s.handleGetRecords)).Methods(http.MethodGet)
	r.Handle("/habits/{habitId:[0-9]+}/records/{recordId:[0-9]+}", s.requireAuth(s.handleDeleteRecord)).Methods(http.MethodDelete)
}
