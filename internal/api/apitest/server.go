// Package apitest provides an in-memory fake of the kairos backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
)

// Request is a call received by the fake backend
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	habits    map[string]models.Habit
	checkins  map[string]models.HabitCheckin
	schedules map[string]models.Schedule
	tasks     map[string]models.Task
	finance   map[string]models.FinanceSummary
	requests  []Request

	// Envelope wraps every successful response in {success, message, data}
	Envelope bool
	// FailCheckins makes POST /habit-checkin answer 500
	FailCheckins bool
	// FailTasks makes PUT /task/{id} answer 500
	FailTasks bool
	// SilentCheckins makes POST /habit-checkin answer 201 with no body
	SilentCheckins bool
	// Token, when set, is the only bearer token accepted
	Token string
}

// NewServer starts a fake backend that is closed when the test ends
func NewServer(t testing.TB) *Server {
	s := &Server{
		habits:    map[string]models.Habit{},
		checkins:  map[string]models.HabitCheckin{},
		schedules: map[string]models.Schedule{},
		tasks:     map[string]models.Task{},
		finance:   map[string]models.FinanceSummary{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/habit", s.listHabits).Methods("GET")
	r.HandleFunc("/habit/user/{uid}", s.listHabitsByUser).Methods("GET")
	r.HandleFunc("/habit/user/{uid}/date/{date}", s.habitsForDay).Methods("GET")
	r.HandleFunc("/habits", s.createHabit).Methods("POST")
	r.HandleFunc("/habits/{id}", s.getHabit).Methods("GET")
	r.HandleFunc("/habits/{id}", s.updateHabit).Methods("PUT")
	r.HandleFunc("/habits/{id}", s.deleteHabit).Methods("DELETE")

	r.HandleFunc("/habit-checkin", s.listCheckins).Methods("GET")
	r.HandleFunc("/habit-checkin", s.createCheckin).Methods("POST")
	r.HandleFunc("/habit-checkin/user/{uid}", s.listCheckinsByUser).Methods("GET")
	r.HandleFunc("/habit-checkin/{id}", s.getCheckin).Methods("GET")
	r.HandleFunc("/habit-checkin/{id}", s.updateCheckin).Methods("PUT")
	r.HandleFunc("/habit-checkin/{id}", s.deleteCheckin).Methods("DELETE")

	r.HandleFunc("/schedules", s.listSchedules).Methods("GET")
	r.HandleFunc("/schedules", s.createSchedule).Methods("POST")
	r.HandleFunc("/schedules/{id}", s.getSchedule).Methods("GET")
	r.HandleFunc("/schedules/{id}", s.updateSchedule).Methods("PUT")
	r.HandleFunc("/schedules/{id}", s.deleteSchedule).Methods("DELETE")
	r.HandleFunc("/schedule/user/{uid}", s.listSchedulesByUser).Methods("GET")

	r.HandleFunc("/task/user/{uid}", s.listTasksByUser).Methods("GET")
	r.HandleFunc("/task/{id}", s.updateTask).Methods("PUT")

	r.HandleFunc("/finance/summary/user/{uid}", s.financeSummary).Methods("GET")
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		auth := r.Header.Get("Authorization")

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Authorization: auth, Body: body})
		token := s.Token
		s.mu.Unlock()

		if token != "" && auth != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Seeding helpers

func (s *Server) AddHabit(h models.Habit) models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	s.habits[h.ID] = h
	return h
}

func (s *Server) AddCheckin(c models.HabitCheckin) models.HabitCheckin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.checkins[c.ID] = c
	return c
}

func (s *Server) AddSchedule(sc models.Schedule) models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	s.schedules[sc.ID] = sc
	return sc
}

func (s *Server) AddTask(t models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Server) SetFinance(uid string, f models.FinanceSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finance[uid] = f
}

// Habit returns the stored habit with id
func (s *Server) Habit(id string) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	return h, ok
}

// Checkins returns every stored checkin of habitID, oldest first
func (s *Server) Checkins(habitID string) []models.HabitCheckin {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.HabitCheckin
	for _, c := range s.checkins {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	sortCheckins(out)
	return out
}

// Task returns the stored task with id
func (s *Server) Task(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Schedule returns the stored schedule with id
func (s *Server) Schedule(id string) (models.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	return sc, ok
}

// Habits

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, sortedHabits(s.habits, func(models.Habit) bool { return true }))
}

func (s *Server) listHabitsByUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, sortedHabits(s.habits, func(h models.Habit) bool { return h.UserID == uid }))
}

func (s *Server) habitsForDay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	day, err := time.Parse(constants.PathDateFormat, vars["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	date := day.Format(constants.DateFormat)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.HabitForHome{}
	for _, h := range sortedHabits(s.habits, func(h models.Habit) bool { return h.UserID == vars["uid"] }) {
		item := models.HabitForHome{Habit: h, Checkins: []models.HabitCheckin{}}
		for _, c := range s.checkins {
			if c.HabitID == h.ID && c.Date == date {
				item.Checkins = append(item.Checkins, c)
			}
		}
		sortCheckins(item.Checkins)
		out = append(out, item)
	}
	s.write(w, http.StatusOK, out)
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	s.write(w, http.StatusOK, h)
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var h models.Habit
	if !readJSON(w, r, &h) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	h.CreatedAt, h.UpdatedAt = now, now
	s.habits[h.ID] = h
	s.write(w, http.StatusCreated, h)
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var h models.Habit
	if !readJSON(w, r, &h) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[id]; !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	h.ID = id
	h.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.habits[id] = h
	s.write(w, http.StatusOK, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[id]; !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	delete(s.habits, id)
	w.WriteHeader(http.StatusNoContent)
}

// Checkins

func (s *Server) listCheckins(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, s.filterCheckins(func(models.HabitCheckin) bool { return true }))
}

func (s *Server) listCheckinsByUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, s.filterCheckins(func(c models.HabitCheckin) bool {
		return s.habits[c.HabitID].UserID == uid
	}))
}

func (s *Server) getCheckin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkins[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "checkin not found")
		return
	}
	s.write(w, http.StatusOK, c)
}

func (s *Server) createCheckin(w http.ResponseWriter, r *http.Request) {
	var c models.HabitCheckin
	if !readJSON(w, r, &c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCheckins {
		writeError(w, http.StatusInternalServerError, "checkin service unavailable")
		return
	}
	h, ok := s.habits[c.HabitID]
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	s.checkins[c.ID] = c
	if c.Completed {
		h.Streak++
		if h.Streak > h.LongestStreak {
			h.LongestStreak = h.Streak
		}
		s.habits[h.ID] = h
	}
	if s.SilentCheckins {
		w.WriteHeader(http.StatusCreated)
		return
	}
	s.write(w, http.StatusCreated, c)
}

func (s *Server) updateCheckin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var c models.HabitCheckin
	if !readJSON(w, r, &c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.checkins[id]
	if !ok {
		writeError(w, http.StatusNotFound, "checkin not found")
		return
	}
	c.ID = id
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	s.checkins[id] = c
	s.write(w, http.StatusOK, c)
}

func (s *Server) deleteCheckin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[id]; !ok {
		writeError(w, http.StatusNotFound, "checkin not found")
		return
	}
	delete(s.checkins, id)
	w.WriteHeader(http.StatusNoContent)
}

// Schedules

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, s.filterSchedules(func(models.Schedule) bool { return true }))
}

func (s *Server) listSchedulesByUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(w, http.StatusOK, s.filterSchedules(func(sc models.Schedule) bool { return sc.UserID == uid }))
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	s.write(w, http.StatusOK, sc)
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var sc models.Schedule
	if !readJSON(w, r, &sc) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = uuid.NewString()
	s.schedules[sc.ID] = sc
	s.write(w, http.StatusCreated, sc)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var sc models.Schedule
	if !readJSON(w, r, &sc) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	sc.ID = id
	s.schedules[id] = sc
	s.write(w, http.StatusOK, sc)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	delete(s.schedules, id)
	w.WriteHeader(http.StatusNoContent)
}

// Tasks and finance

func (s *Server) listTasksByUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.UserID == uid {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	s.write(w, http.StatusOK, out)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var t models.Task
	if !readJSON(w, r, &t) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTasks {
		writeError(w, http.StatusInternalServerError, "task service unavailable")
		return
	}
	if _, ok := s.tasks[id]; !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	t.ID = id
	t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.tasks[id] = t
	s.write(w, http.StatusOK, t)
}

func (s *Server) financeSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.finance[mux.Vars(r)["uid"]]
	if !ok {
		writeError(w, http.StatusNotFound, "no finance data")
		return
	}
	s.write(w, http.StatusOK, f)
}

// helpers

func (s *Server) filterCheckins(keep func(models.HabitCheckin) bool) []models.HabitCheckin {
	out := []models.HabitCheckin{}
	for _, c := range s.checkins {
		if keep(c) {
			out = append(out, c)
		}
	}
	sortCheckins(out)
	return out
}

func (s *Server) filterSchedules(keep func(models.Schedule) bool) []models.Schedule {
	out := []models.Schedule{}
	for _, sc := range s.schedules {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func sortedHabits(habits map[string]models.Habit, keep func(models.Habit) bool) []models.Habit {
	out := []models.Habit{}
	for _, h := range habits {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortCheckins(cs []models.HabitCheckin) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].CreatedAt < cs[j].CreatedAt })
}

// write must be called with s.mu held
func (s *Server) write(w http.ResponseWriter, status int, v any) {
	var payload any = v
	if s.Envelope {
		payload = map[string]any{"success": true, "message": "ok", "data": v}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return false
	}
	return true
}
