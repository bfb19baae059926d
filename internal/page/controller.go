// Package page owns the task collection shown on the page and every
// transition applied to it.
//
// Transitions that talk to the service return a tea.Cmd. The command runs the
// call off the update loop and yields a result message; Apply folds that
// message back into the state. Only Apply and the transition methods mutate
// the controller, and the caller runs them from a single goroutine.
package page

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskpage/internal/model"
	"github.com/idilsaglam/taskpage/internal/service"
)

// Messages shown in the error banner.
const (
	MsgGeneric      = "Something went wrong. Please try again."
	MsgUpdateFailed = "Failed to update task"
	MsgDeleteFailed = "Failed to delete task"
)

// TasksLoadedMsg carries the result of the initial list call.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

// TaskCreatedMsg carries the result of a create call.
type TaskCreatedMsg struct {
	Task model.Task
	Err  error
}

// TaskUpdatedMsg carries the result of a toggle or rename call.
type TaskUpdatedMsg struct {
	ID   model.TaskID
	Task model.Task
	Err  error
}

// TaskDeletedMsg carries the result of a delete call.
type TaskDeletedMsg struct {
	ID  model.TaskID
	Err error
}

// Confirmer decides whether a delete goes ahead.
type Confirmer func(model.Task) bool

// Controller is the state container behind the page.
type Controller struct {
	ctx    context.Context
	svc    service.Service
	logger *log.Logger

	tasks       []model.Task
	pageLoading bool
	loadIssued  bool
	submitting  bool
	err         string

	// ids with a call in flight; further edits to them are refused
	pending map[model.TaskID]bool

	confirming bool
	confirmID  model.TaskID
}

// New creates a controller in the loading state.
func New(ctx context.Context, svc service.Service, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		ctx:         ctx,
		svc:         svc,
		logger:      logger.WithPrefix("page"),
		pageLoading: true,
		pending:     make(map[model.TaskID]bool),
	}
}

// Tasks returns a copy of the collection in display order.
func (c *Controller) Tasks() []model.Task {
	return append([]model.Task(nil), c.tasks...)
}

// Task looks a task up by id.
func (c *Controller) Task(id model.TaskID) (model.Task, bool) {
	if i := c.index(id); i >= 0 {
		return c.tasks[i], true
	}
	return model.Task{}, false
}

func (c *Controller) PageLoading() bool { return c.pageLoading }
func (c *Controller) Submitting() bool  { return c.submitting }
func (c *Controller) Err() string       { return c.err }

// Pending reports whether a call for id is in flight.
func (c *Controller) Pending(id model.TaskID) bool { return c.pending[id] }

// DismissError clears the banner.
func (c *Controller) DismissError() { c.err = "" }

// Stats counts done and open tasks.
func (c *Controller) Stats() (done, open int) {
	for _, t := range c.tasks {
		if t.Completed {
			done++
		} else {
			open++
		}
	}
	return
}

// CanSubmit reports whether the form's submit control is enabled for title.
func (c *Controller) CanSubmit(title string) bool {
	return !c.submitting && model.Validate(model.CreateTaskInput{Title: title}).Valid()
}

// Load issues the list call. It only does so once per controller.
func (c *Controller) Load() tea.Cmd {
	if c.loadIssued {
		return nil
	}
	c.loadIssued = true
	c.pageLoading = true

	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		tasks, err := svc.ListTasks(ctx)
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

// Submit creates a task titled title. It returns nil when the title is
// invalid or a create is already in flight.
func (c *Controller) Submit(title string) tea.Cmd {
	return c.SubmitInput(model.CreateTaskInput{Title: title})
}

// SubmitInput is Submit with a full payload.
func (c *Controller) SubmitInput(in model.CreateTaskInput) tea.Cmd {
	if c.submitting {
		return nil
	}
	if errs := model.Validate(in); !errs.Valid() {
		c.logger.Debug("create blocked by validation", "errors", errs)
		return nil
	}
	in.Title = strings.TrimSpace(in.Title)
	c.submitting = true

	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		task, err := svc.CreateTask(ctx, in)
		return TaskCreatedMsg{Task: task, Err: err}
	}
}

// Toggle flips the completed flag of id on the service.
func (c *Controller) Toggle(id model.TaskID) tea.Cmd {
	i := c.index(id)
	if i < 0 || c.pending[id] {
		return nil
	}
	want := !c.tasks[i].Completed
	c.pending[id] = true

	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		task, err := svc.ToggleTask(ctx, id, want)
		return TaskUpdatedMsg{ID: id, Task: task, Err: err}
	}
}

// Rename changes the title of id. Titles are validated like on create.
func (c *Controller) Rename(id model.TaskID, title string) tea.Cmd {
	i := c.index(id)
	if i < 0 || c.pending[id] {
		return nil
	}
	if !model.Validate(model.CreateTaskInput{Title: title}).Valid() {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == c.tasks[i].Title {
		return nil
	}
	c.pending[id] = true

	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		task, err := svc.UpdateTask(ctx, id, model.UpdateTaskInput{Title: &title})
		return TaskUpdatedMsg{ID: id, Task: task, Err: err}
	}
}

// RequestDelete asks for confirmation before deleting id.
func (c *Controller) RequestDelete(id model.TaskID) bool {
	if c.index(id) < 0 || c.pending[id] {
		return false
	}
	c.confirming = true
	c.confirmID = id
	return true
}

// PendingDelete returns the task awaiting confirmation, if any.
func (c *Controller) PendingDelete() (model.Task, bool) {
	if !c.confirming {
		return model.Task{}, false
	}
	return c.Task(c.confirmID)
}

// ResolveDelete answers the confirmation. Declining issues no call.
func (c *Controller) ResolveDelete(confirmed bool) tea.Cmd {
	if !c.confirming {
		return nil
	}
	id := c.confirmID
	c.confirming = false
	c.confirmID = ""
	if !confirmed {
		c.logger.Debug("delete declined", "id", id)
		return nil
	}
	if c.index(id) < 0 || c.pending[id] {
		return nil
	}
	c.pending[id] = true

	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		return TaskDeletedMsg{ID: id, Err: svc.DeleteTask(ctx, id)}
	}
}

// Delete runs the whole confirmation step through confirm.
func (c *Controller) Delete(id model.TaskID, confirm Confirmer) tea.Cmd {
	if !c.RequestDelete(id) {
		return nil
	}
	t, _ := c.PendingDelete()
	return c.ResolveDelete(confirm(t))
}

// Apply folds a result message into the state. It reports whether msg was one
// of the controller's messages.
func (c *Controller) Apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		c.pageLoading = false
		if msg.Err != nil {
			c.logger.Warn("load failed", "err", msg.Err)
			c.err = MsgGeneric
			return true
		}
		c.tasks = append([]model.Task(nil), msg.Tasks...)
		c.logger.Debug("tasks loaded", "count", len(c.tasks))

	case TaskCreatedMsg:
		c.submitting = false
		if msg.Err != nil {
			c.logger.Warn("create failed", "err", msg.Err)
			c.err = MsgGeneric
			return true
		}
		c.tasks = append(c.tasks, msg.Task)
		c.err = ""
		c.logger.Debug("task created", "id", msg.Task.ID)

	case TaskUpdatedMsg:
		delete(c.pending, msg.ID)
		if msg.Err != nil {
			c.logger.Warn("update failed", "id", msg.ID, "err", msg.Err)
			c.err = MsgUpdateFailed
			return true
		}
		c.err = ""
		if i := c.index(msg.ID); i >= 0 {
			c.tasks[i] = msg.Task
		}

	case TaskDeletedMsg:
		delete(c.pending, msg.ID)
		if msg.Err != nil {
			c.logger.Warn("delete failed", "id", msg.ID, "err", msg.Err)
			c.err = MsgDeleteFailed
			return true
		}
		c.err = ""
		if i := c.index(msg.ID); i >= 0 {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		}

	default:
		return false
	}
	return true
}

// Exec runs cmd on the calling goroutine and applies its result. It reports
// false when there was nothing to run.
func (c *Controller) Exec(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	return c.Apply(cmd())
}

func (c *Controller) index(id model.TaskID) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
