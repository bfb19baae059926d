package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taskpage/internal/model"
)

// Views are pure: data in, string out. No state lives here.

// TaskLine renders one task as a single line, e.g. "> ☐ Buy milk".
func TaskLine(task model.Task, selected, busy bool) string {
	t := Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := task.Title
	if task.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}

	line := box + " " + text
	if busy {
		line += " " + t.Pending.Render(t.SymBusy)
	}
	prefix := "  "
	if selected {
		prefix = t.Selected.Render(">") + " "
	}
	return prefix + line
}

// TaskList renders a numbered list. With group set, open tasks come first
// under "Pending" and completed ones under "Done"; numbers stay the same.
func TaskList(tasks []model.Task, group bool) string {
	t := Current()
	if len(tasks) == 0 {
		return t.Muted.Render("No tasks yet.")
	}

	width := len(fmt.Sprint(len(tasks)))
	line := func(i int) string {
		return fmt.Sprintf("%*d. %s", width, i+1, strings.TrimPrefix(TaskLine(tasks[i], false, false), "  "))
	}

	var lines []string
	if !group {
		for i := range tasks {
			lines = append(lines, line(i))
		}
		return strings.Join(lines, "\n")
	}

	var open, done []string
	for i, task := range tasks {
		if task.Completed {
			done = append(done, "  "+line(i))
		} else {
			open = append(open, "  "+line(i))
		}
	}
	if len(open) > 0 {
		lines = append(lines, t.Pending.Render(t.SymPending+" Pending"))
		lines = append(lines, open...)
	}
	if len(done) > 0 {
		lines = append(lines, t.Success.Render(t.SymDone+" Done"))
		lines = append(lines, done...)
	}
	return strings.Join(lines, "\n")
}

// Header renders the title with live counts.
func Header(done, open int) string {
	t := Current()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Tasks"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), open,
		t.Accent.Render("Total"), done+open,
	)
}

// FormButton labels a form's submit control at rest and while its call is in flight.
type FormButton struct {
	Label, Busy string
}

var (
	AddButton  = FormButton{Label: "Add Task", Busy: "Adding"}
	SaveButton = FormButton{Label: "Save", Busy: "Saving"}
)

// TaskForm renders the add/edit form. input is the already rendered text
// input, fieldErr the validation message for the title (may be empty).
func TaskForm(heading string, button FormButton, input, fieldErr string, disabled, submitting bool) string {
	t := Current()

	label := "[ " + button.Label + " ]"
	style := t.Accent
	switch {
	case submitting:
		label = "[ " + button.Busy + t.SymBusy + " ]"
		style = t.Muted
	case disabled:
		style = t.Muted
	}

	lines := []string{t.Title.Render(heading), input}
	if fieldErr != "" {
		lines = append(lines, t.Error.Render(fieldErr))
	}
	lines = append(lines, style.Render(label))

	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// LoadingSpinner renders the loading indicator. frame is the current spinner frame.
func LoadingSpinner(frame string) string {
	return frame + " Loading…"
}

// ErrorBanner renders message as an alert. Empty message renders nothing.
func ErrorBanner(message string) string {
	if message == "" {
		return ""
	}
	t := Current()
	return t.Error.Render(t.SymFail + " " + message)
}

// ConfirmPrompt asks whether task should be deleted.
func ConfirmPrompt(task model.Task) string {
	t := Current()
	return fmt.Sprintf("%s %q? %s", t.Error.Render("Delete"), task.Title, t.Help.Render("(y/n)"))
}
