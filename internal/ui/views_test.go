package ui

import (
	"strings"
	"testing"

	"github.com/idilsaglam/taskpage/internal/model"
)

func TestTaskLine(t *testing.T) {
	SetTheme("classic")

	open := TaskLine(model.Task{ID: "1", Title: "Learn X"}, false, false)
	if !strings.Contains(open, "☐ Learn X") {
		t.Errorf("open task: got %q", open)
	}
	done := TaskLine(model.Task{ID: "1", Title: "Learn X", Completed: true}, true, true)
	if !strings.Contains(done, "☑") || !strings.Contains(done, "Learn X") {
		t.Errorf("done task: got %q", done)
	}
	if !strings.Contains(done, ">") || !strings.Contains(done, "…") {
		t.Errorf("selected busy task should show cursor and busy marker: %q", done)
	}
}

func TestTaskListGrouped(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	tasks := []model.Task{
		{ID: "a", Title: "done one", Completed: true},
		{ID: "b", Title: "open one"},
	}

	flat := TaskList(tasks, false)
	if !strings.Contains(flat, "1. [x] done one") || !strings.Contains(flat, "2. [ ] open one") {
		t.Errorf("flat list:\n%s", flat)
	}

	grouped := TaskList(tasks, true)
	pi := strings.Index(grouped, "Pending")
	di := strings.Index(grouped, "Done")
	if pi < 0 || di < 0 || pi > di {
		t.Fatalf("grouped list should show Pending before Done:\n%s", grouped)
	}
	if !strings.Contains(grouped, "2. [ ] open one") {
		t.Errorf("grouped list should keep service-order numbering:\n%s", grouped)
	}
}

func TestTaskListEmpty(t *testing.T) {
	if got := TaskList(nil, false); !strings.Contains(got, "No tasks yet.") {
		t.Errorf("empty list: got %q", got)
	}
}

func TestTaskFormButtonState(t *testing.T) {
	SetTheme("classic")

	enabled := TaskForm("Add task", AddButton, "> New", "", false, false)
	if !strings.Contains(enabled, "[ Add Task ]") {
		t.Errorf("form: got\n%s", enabled)
	}
	invalid := TaskForm("Add task", AddButton, "> ", model.MsgTitleRequired, true, false)
	if !strings.Contains(invalid, model.MsgTitleRequired) {
		t.Errorf("form should show the validation message:\n%s", invalid)
	}
	busy := TaskForm("Add task", AddButton, "> New", "", true, true)
	if !strings.Contains(busy, "Adding") {
		t.Errorf("submitting form: got\n%s", busy)
	}

	edit := TaskForm("Edit task", SaveButton, "> old", "", false, false)
	if !strings.Contains(edit, "[ Save ]") || strings.Contains(edit, "Add Task") {
		t.Errorf("edit form should offer Save:\n%s", edit)
	}
}

func TestErrorBanner(t *testing.T) {
	if got := ErrorBanner(""); got != "" {
		t.Errorf("empty message should render nothing, got %q", got)
	}
	if got := ErrorBanner("Failed to update task"); !strings.Contains(got, "Failed to update task") {
		t.Errorf("banner: got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 4, 8, "░░░░░░░░   0%"},
		{2, 4, 8, "████░░░░  50%"},
		{4, 4, 8, "████████ 100%"},
		{0, 0, 2, "░░░░░   0%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d,%d,%d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestThemeByNameFallsBack(t *testing.T) {
	if got := ThemeByName("nope").Name; got != "classic" {
		t.Errorf("unknown theme: got %q", got)
	}
	if got := ThemeByName(" NEON ").Name; got != "neon" {
		t.Errorf("neon theme: got %q", got)
	}
}
