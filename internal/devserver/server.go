// Package devserver serves the /todos REST contract for local development.
package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idilsaglam/taskpage/internal/logging"
	"github.com/idilsaglam/taskpage/internal/model"
	"github.com/idilsaglam/taskpage/internal/store/jsonstore"
)

// Server holds tasks in memory and writes them through to an optional store.
type Server struct {
	mu      sync.Mutex
	tasks   []model.Task
	store   *jsonstore.Store
	logger  *log.Logger
	metrics *metrics
	now     func() time.Time
	newID   func() string
}

// Options configures a Server.
type Options struct {
	// Store persists tasks; nil keeps them in memory only.
	Store  *jsonstore.Store
	Logger *log.Logger
	// Registry receives the request metrics; nil creates a private one.
	Registry *prometheus.Registry
}

// New loads the initial tasks from the store and returns a server.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		tasks:   []model.Task{},
		store:   opts.Store,
		logger:  logger,
		metrics: newMetrics(reg),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	if s.store != nil {
		tasks, err := s.store.Load()
		if err != nil {
			return nil, err
		}
		s.tasks = tasks
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.middleware)
	r.Use(s.logRequests)

	r.HandleFunc("/todos", s.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.createTask).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", s.updateTask).Methods(http.MethodPatch)
	r.HandleFunc("/todos/{id}", s.deleteTask).Methods(http.MethodDelete)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)
	return r
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in model.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := model.Validate(in); !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, errs)
		return
	}

	task := model.Task{
		ID:          model.TaskID(s.newID()),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.tasks[:len(s.tasks):len(s.tasks)], task)
	if err := s.persist(next); err != nil {
		s.logger.Error("save failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not save task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := model.TaskID(mux.Vars(r)["id"])

	var in model.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	updated := in.Apply(s.tasks[i])
	if errs := model.Validate(model.CreateTaskInput{Title: updated.Title, Description: updated.Description}); !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, errs)
		return
	}

	next := make([]model.Task, len(s.tasks))
	copy(next, s.tasks)
	next[i] = updated
	if err := s.persist(next); err != nil {
		s.logger.Error("save failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not save task")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := model.TaskID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	if err := s.persist(next); err != nil {
		s.logger.Error("save failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// persist saves next and swaps it in. Caller holds s.mu.
func (s *Server) persist(next []model.Task) error {
	if s.store != nil {
		if err := s.store.Save(next); err != nil {
			return err
		}
	}
	s.tasks = next
	return nil
}

func (s *Server) indexOf(id model.TaskID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start),
			"request_id", r.Header.Get("X-Request-ID"))
	})
}

// Tasks returns a snapshot of the current tasks.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
