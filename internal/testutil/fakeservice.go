// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/idilsaglam/taskpage/internal/model"
)

// ErrNotFound is returned when a task id is unknown.
var ErrNotFound = errors.New("not found")

// Call records one invocation of the fake.
type Call struct {
	Op        string
	ID        model.TaskID
	Title     string
	Completed bool
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []model.Task
	nextID int
	calls  []Call

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeService creates a FakeService holding a copy of tasks.
func NewFakeService(tasks ...model.Task) *FakeService {
	f := &FakeService{nextID: 100}
	f.tasks = append(f.tasks, tasks...)
	return f
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks...)
}

// Calls returns the recorded invocations in order.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts invocations of op.
func (f *FakeService) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *FakeService) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "list"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]model.Task{}, f.tasks...), nil
}

func (f *FakeService) CreateTask(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Title: in.Title})
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}
	f.nextID++
	t := model.Task{
		ID:          model.TaskID(strconv.Itoa(f.nextID)),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   "2024-01-01T00:00:00Z",
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *FakeService) ToggleTask(ctx context.Context, id model.TaskID, completed bool) (model.Task, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: "toggle", ID: id, Completed: completed})
	err := f.UpdateErr
	f.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	return f.patch(id, model.UpdateTaskInput{Completed: &completed})
}

func (f *FakeService) UpdateTask(ctx context.Context, id model.TaskID, in model.UpdateTaskInput) (model.Task, error) {
	f.mu.Lock()
	c := Call{Op: "update", ID: id}
	if in.Title != nil {
		c.Title = *in.Title
	}
	f.calls = append(f.calls, c)
	err := f.UpdateErr
	f.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	return f.patch(id, in)
}

func (f *FakeService) DeleteTask(ctx context.Context, id model.TaskID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "delete", ID: id})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *FakeService) patch(id model.TaskID, in model.UpdateTaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = in.Apply(t)
			return f.tasks[i], nil
		}
	}
	return model.Task{}, ErrNotFound
}
