// Package api implements service.Service over the task REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/idilsaglam/taskpage/internal/model"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxFailures is the number of consecutive failures that opens the breaker.
	DefaultMaxFailures = 5

	// DefaultOpenTimeout is how long the breaker stays open before probing again.
	DefaultOpenTimeout = 30 * time.Second

	tasksPath = "/todos"
)

// Every failure of an operation collapses to one of these values.
// The underlying cause is logged and dropped.
var (
	ErrFetchTasks = errors.New("failed to fetch tasks")
	ErrCreateTask = errors.New("failed to create task")
	ErrUpdateTask = errors.New("failed to update task")
	ErrDeleteTask = errors.New("failed to delete task")
)

// Options configures a Client. Zero values pick the defaults above.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *log.Logger
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Client talks to the task service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *log.Logger
}

// New creates a Client from opts.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxFailures
	}
	openTimeout := opts.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = DefaultOpenTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "taskpage-api",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A 4xx means the service answered; only transport and 5xx errors count.
		IsSuccessful: func(err error) bool {
			// the caller gave up; says nothing about the service
			if errors.Is(err, context.Canceled) {
				return true
			}
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: base,
		timeout: timeout,
		http:    hc,
		cb:      cb,
		logger:  logger,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTasks fetches all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, "list", http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, ErrFetchTasks
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, "create", http.MethodPost, tasksPath, in, &task); err != nil {
		return model.Task{}, ErrCreateTask
	}
	return task, nil
}

// ToggleTask sets the completed flag of a task.
func (c *Client) ToggleTask(ctx context.Context, id model.TaskID, completed bool) (model.Task, error) {
	return c.UpdateTask(ctx, id, model.UpdateTaskInput{Completed: &completed})
}

// UpdateTask sends a partial update for a task.
func (c *Client) UpdateTask(ctx context.Context, id model.TaskID, in model.UpdateTaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, "update", http.MethodPatch, taskPath(id), in, &task); err != nil {
		return model.Task{}, ErrUpdateTask
	}
	return task, nil
}

// DeleteTask deletes a task. Any response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id model.TaskID) error {
	if err := c.do(ctx, "delete", http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return ErrDeleteTask
	}
	return nil
}

func taskPath(id model.TaskID) string {
	return tasksPath + "/" + url.PathEscape(string(id))
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := uuid.NewString()
	logger := c.logger.With("op", op, "request_id", reqID)
	start := time.Now()

	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, reqID, method, path, body, out)
	})
	if err != nil {
		logger.Debug("request failed", "method", method, "path", path, "elapsed", time.Since(start), "err", err)
		return err
	}
	logger.Debug("request done", "method", method, "path", path, "elapsed", time.Since(start))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, reqID, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}
