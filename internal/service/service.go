// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"

	"github.com/idilsaglam/taskpage/internal/model"
)

// Service is everything the page needs from the task backend.
// The page controller never talks HTTP directly.
type Service interface {
	// ListTasks returns every task in service order.
	ListTasks(ctx context.Context) ([]model.Task, error)

	// CreateTask creates a task and returns it as stored by the service.
	CreateTask(ctx context.Context, in model.CreateTaskInput) (model.Task, error)

	// ToggleTask sets the completed flag and returns the updated task.
	ToggleTask(ctx context.Context, id model.TaskID, completed bool) (model.Task, error)

	// UpdateTask applies a partial update and returns the updated task.
	UpdateTask(ctx context.Context, id model.TaskID, in model.UpdateTaskInput) (model.Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id model.TaskID) error
}
