package page

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/idilsaglam/taskpage/internal/model"
	"github.com/idilsaglam/taskpage/internal/testutil"
)

var errBoom = errors.New("boom")

func newLoaded(t *testing.T, tasks ...model.Task) (*Controller, *testutil.FakeService) {
	t.Helper()
	svc := testutil.NewFakeService(tasks...)
	c := New(context.Background(), svc, nil)
	if !c.Exec(c.Load()) {
		t.Fatal("Load: expected a command")
	}
	return c, svc
}

func TestLoadSuccess(t *testing.T) {
	svc := testutil.NewFakeService(model.Task{ID: "1", Title: "Learn X"})
	c := New(context.Background(), svc, nil)

	if !c.PageLoading() {
		t.Fatal("expected pageLoading before load")
	}
	cmd := c.Load()
	if cmd == nil {
		t.Fatal("Load returned nil")
	}
	if !c.PageLoading() {
		t.Error("pageLoading cleared before the call resolved")
	}
	c.Apply(cmd())

	if c.PageLoading() {
		t.Error("pageLoading still set after load")
	}
	tasks := c.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Learn X" || tasks[0].Completed {
		t.Errorf("tasks: got %+v", tasks)
	}
	if c.Err() != "" {
		t.Errorf("unexpected error %q", c.Err())
	}
}

func TestLoadOnlyOnce(t *testing.T) {
	c, svc := newLoaded(t)
	if cmd := c.Load(); cmd != nil {
		t.Error("second Load should return nil")
	}
	if n := svc.CallCount("list"); n != 1 {
		t.Errorf("list calls: got %d, want 1", n)
	}
}

func TestLoadFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListErr = errBoom
	c := New(context.Background(), svc, nil)
	c.Exec(c.Load())

	if c.PageLoading() {
		t.Error("pageLoading should clear on failure")
	}
	if c.Err() != MsgGeneric {
		t.Errorf("Err: got %q, want %q", c.Err(), MsgGeneric)
	}
}

func TestSubmitAppendsCreatedTask(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "first"})

	cmd := c.Submit("  New Task ")
	if cmd == nil {
		t.Fatal("Submit returned nil for a valid title")
	}
	if !c.Submitting() {
		t.Error("expected submitting while the call is in flight")
	}
	if c.CanSubmit("another") {
		t.Error("submit control should be disabled while submitting")
	}
	if again := c.Submit("dup"); again != nil {
		t.Error("second Submit while submitting should be refused")
	}
	c.Apply(cmd())

	if c.Submitting() {
		t.Error("submitting not cleared")
	}
	tasks := c.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2", len(tasks))
	}
	last := tasks[1]
	created := svc.Tasks()[1]
	if last != created {
		t.Errorf("appended task: got %+v, want %+v", last, created)
	}
	if last.Title != "New Task" {
		t.Errorf("title should be trimmed, got %q", last.Title)
	}
}

func TestSubmitInvalidIssuesNoCall(t *testing.T) {
	c, svc := newLoaded(t)

	for _, title := range []string{"", "   ", strings.Repeat("x", 101)} {
		if c.CanSubmit(title) {
			t.Errorf("CanSubmit(%q) should be false", title)
		}
		if cmd := c.Submit(title); cmd != nil {
			t.Errorf("Submit(%q) should return nil", title)
		}
	}
	if n := svc.CallCount("create"); n != 0 {
		t.Errorf("create calls: got %d, want 0", n)
	}
	if c.Submitting() {
		t.Error("submitting should stay false")
	}
}

func TestSubmitFailure(t *testing.T) {
	c, svc := newLoaded(t)
	svc.CreateErr = errBoom

	c.Exec(c.Submit("New Task"))
	if c.Err() != MsgGeneric {
		t.Errorf("Err: got %q, want %q", c.Err(), MsgGeneric)
	}
	if c.Submitting() {
		t.Error("submitting must clear on failure")
	}
	if len(c.Tasks()) != 0 {
		t.Errorf("tasks: got %+v", c.Tasks())
	}
}

func TestToggleRequestsInvertedFlag(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"})

	c.Exec(c.Toggle("1"))

	calls := svc.Calls()
	last := calls[len(calls)-1]
	if last.Op != "toggle" || last.ID != "1" || !last.Completed {
		t.Errorf("toggle call: got %+v", last)
	}
	task, _ := c.Task("1")
	if !task.Completed {
		t.Error("task should be completed after toggle")
	}

	c.Exec(c.Toggle("1"))
	calls = svc.Calls()
	if last := calls[len(calls)-1]; last.Completed {
		t.Errorf("second toggle should request completed=false, got %+v", last)
	}
}

func TestToggleFailureKeepsState(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"})
	svc.UpdateErr = errBoom

	c.Exec(c.Toggle("1"))
	if c.Err() != MsgUpdateFailed {
		t.Errorf("Err: got %q, want %q", c.Err(), MsgUpdateFailed)
	}
	task, _ := c.Task("1")
	if task.Completed {
		t.Error("task state changed despite failure")
	}
	if c.Pending("1") {
		t.Error("pending flag not cleared")
	}
}

func TestSameTaskOperationsAreSerialized(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"}, model.Task{ID: "2", Title: "other"})

	toggle := c.Toggle("1")
	if toggle == nil {
		t.Fatal("Toggle returned nil")
	}
	if !c.Pending("1") {
		t.Error("expected task 1 pending")
	}
	if cmd := c.Toggle("1"); cmd != nil {
		t.Error("toggle of a pending task should be refused")
	}
	if c.RequestDelete("1") {
		t.Error("delete of a pending task should be refused")
	}
	// other tasks are not blocked
	other := c.Toggle("2")
	if other == nil {
		t.Fatal("toggle of another task should be allowed")
	}

	// resolve out of order: last resolved wins on the latest snapshot
	c.Apply(other())
	c.Apply(toggle())

	if n := svc.CallCount("toggle"); n != 2 {
		t.Errorf("toggle calls: got %d, want 2", n)
	}
	for _, tk := range c.Tasks() {
		if !tk.Completed {
			t.Errorf("task %s should be completed", tk.ID)
		}
	}
}

func TestDeleteDeclined(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"})

	cmd := c.Delete("1", func(model.Task) bool { return false })
	if cmd != nil {
		t.Error("declined delete should issue no call")
	}
	if n := svc.CallCount("delete"); n != 0 {
		t.Errorf("delete calls: got %d", n)
	}
	if len(c.Tasks()) != 1 {
		t.Error("task should remain")
	}
	if _, ok := c.PendingDelete(); ok {
		t.Error("confirmation state should be cleared")
	}
}

func TestDeleteConfirmed(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"}, model.Task{ID: "2", Title: "keep"})

	if !c.RequestDelete("1") {
		t.Fatal("RequestDelete refused")
	}
	pd, ok := c.PendingDelete()
	if !ok || pd.ID != "1" {
		t.Fatalf("PendingDelete: got %+v, %v", pd, ok)
	}
	c.Exec(c.ResolveDelete(true))

	if n := svc.CallCount("delete"); n != 1 {
		t.Errorf("delete calls: got %d, want 1", n)
	}
	tasks := c.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "2" {
		t.Errorf("tasks: got %+v", tasks)
	}
}

func TestDeleteFailure(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"})
	svc.DeleteErr = errBoom

	c.Exec(c.Delete("1", func(model.Task) bool { return true }))
	if c.Err() != MsgDeleteFailed {
		t.Errorf("Err: got %q, want %q", c.Err(), MsgDeleteFailed)
	}
	if len(c.Tasks()) != 1 {
		t.Error("task should remain after a failed delete")
	}
}

func TestSuccessClearsError(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "Learn X"})
	svc.UpdateErr = errBoom
	c.Exec(c.Toggle("1"))
	if c.Err() == "" {
		t.Fatal("expected an error")
	}

	svc.UpdateErr = nil
	c.Exec(c.Toggle("1"))
	if c.Err() != "" {
		t.Errorf("Err: got %q, want cleared", c.Err())
	}
}

func TestRename(t *testing.T) {
	c, svc := newLoaded(t, model.Task{ID: "1", Title: "old"})

	if cmd := c.Rename("1", "  "); cmd != nil {
		t.Error("invalid title should be refused")
	}
	if cmd := c.Rename("1", "old"); cmd != nil {
		t.Error("unchanged title should be refused")
	}
	c.Exec(c.Rename("1", "new"))

	task, _ := c.Task("1")
	if task.Title != "new" {
		t.Errorf("title: got %q", task.Title)
	}
	if n := svc.CallCount("update"); n != 1 {
		t.Errorf("update calls: got %d, want 1", n)
	}
}

func TestResultForRemovedTaskIsIgnored(t *testing.T) {
	c, _ := newLoaded(t, model.Task{ID: "1", Title: "x"})
	c.Apply(TaskDeletedMsg{ID: "1"})
	c.Apply(TaskUpdatedMsg{ID: "1", Task: model.Task{ID: "1", Title: "x", Completed: true}})

	if len(c.Tasks()) != 0 {
		t.Errorf("late update resurrected a deleted task: %+v", c.Tasks())
	}
}

func TestStats(t *testing.T) {
	c, _ := newLoaded(t,
		model.Task{ID: "1", Completed: true},
		model.Task{ID: "2"},
		model.Task{ID: "3"},
	)
	done, open := c.Stats()
	if done != 1 || open != 2 {
		t.Errorf("Stats: got %d/%d, want 1/2", done, open)
	}
}
