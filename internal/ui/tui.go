package ui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taskpage/internal/model"
	"github.com/idilsaglam/taskpage/internal/page"
)

// listItem adapts a task to bubbles/list.Item
type listItem struct {
	task model.Task
	busy bool
}

func (i listItem) FilterValue() string { return i.task.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	io.WriteString(w, TaskLine(it.task, index == m.Index(), it.busy))
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirm
)

type keyMap struct {
	Add, Edit, Toggle, Delete, Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model for the task page.
type Model struct {
	ctrl *page.Controller

	list    list.Model
	ti      textinput.Model // shared by add & edit
	spinner spinner.Model
	keys    keyMap

	mode   mode
	editID model.TaskID

	width, height int
}

// NewModel builds the page model around ctrl.
func NewModel(ctrl *page.Controller) *Model {
	t := Current()
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit.SetEnabled(false) // quitting is handled here
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Toggle, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Task title"
	ti.CharLimit = model.MaxDescriptionLen

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = t.Accent

	m := &Model{
		ctrl:    ctrl,
		list:    l,
		ti:      ti,
		spinner: sp,
		keys:    keys,
		width:   80,
		height:  24,
	}
	m.syncList()
	return m
}

// Run starts the interactive page and blocks until the user quits.
func Run(ctx context.Context, ctrl *page.Controller) error {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Update and View implement Bubble Tea's Model
func (m *Model) Init() tea.Cmd {
	return batch(m.spinner.Tick, m.ctrl.Load())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.PageLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case page.TaskCreatedMsg:
		m.ctrl.Apply(msg)
		// the input is shared with the edit form, which may be open by now
		if msg.Err == nil && m.mode != modeEdit {
			m.ti.SetValue("")
			if m.mode == modeAdd {
				m.ti.Blur()
				m.mode = modeBrowse
			}
		}
		return m, m.syncList()

	case page.TasksLoadedMsg, page.TaskUpdatedMsg, page.TaskDeletedMsg:
		m.ctrl.Apply(msg)
		return m, m.syncList()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.ctrl.PageLoading() {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the filter input owns the keyboard while it is open
	if m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case msg.String() == "esc" && m.ctrl.Err() != "":
		m.ctrl.DismissError()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.ti.Placeholder = "Task title"
		m.ti.CursorEnd()
		return m, m.ti.Focus()

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selected()
		if !ok || it.busy {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = it.task.ID
		m.ti.SetValue(it.task.Title)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit task title"
		return m, m.ti.Focus()

	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, batch(m.ctrl.Toggle(it.task.ID), m.syncList())

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.ctrl.RequestDelete(it.task.ID) {
			m.mode = modeConfirm
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// a disabled submit control does nothing
		return m, m.ctrl.Submit(m.ti.Value())
	case "esc":
		m.mode = modeBrowse
		m.ti.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := m.ti.Value()
		if !model.Validate(model.CreateTaskInput{Title: title}).Valid() {
			return m, nil
		}
		cmd := m.ctrl.Rename(m.editID, title)
		m.leaveEdit()
		return m, batch(cmd, m.syncList())
	case "esc":
		m.leaveEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) leaveEdit() {
	m.mode = modeBrowse
	m.editID = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		return m, batch(m.ctrl.ResolveDelete(true), m.syncList())
	case "n", "N", "esc":
		m.mode = modeBrowse
		return m, m.ctrl.ResolveDelete(false)
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ctrl.PageLoading() {
		return LoadingSpinner(m.spinner.View())
	}

	var top []string
	if banner := ErrorBanner(m.ctrl.Err()); banner != "" {
		top = append(top, banner)
	}

	var bottom []string
	switch m.mode {
	case modeAdd:
		fieldErr := ""
		if m.ti.Value() != "" {
			fieldErr = model.Validate(model.CreateTaskInput{Title: m.ti.Value()})["title"]
		}
		bottom = append(bottom, TaskForm("Add task", AddButton, m.ti.View(), fieldErr,
			!m.ctrl.CanSubmit(m.ti.Value()), m.ctrl.Submitting()))
	case modeEdit:
		fieldErr := model.Validate(model.CreateTaskInput{Title: m.ti.Value()})["title"]
		bottom = append(bottom, TaskForm("Edit task", SaveButton, m.ti.View(), fieldErr, fieldErr != "", false))
	case modeConfirm:
		if t, ok := m.ctrl.PendingDelete(); ok {
			bottom = append(bottom, ConfirmPrompt(t))
		}
	}

	used := 0
	for _, s := range top {
		used += lipgloss.Height(s)
	}
	for _, s := range bottom {
		used += lipgloss.Height(s)
	}
	listHeight := m.height - used - 2
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-2, listHeight)

	parts := append(top, m.list.View())
	parts = append(parts, bottom...)
	return strings.Join(parts, "\n")
}

func (m *Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// syncList copies the controller's collection into the list widget.
func (m *Model) syncList() tea.Cmd {
	tasks := m.ctrl.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, listItem{task: t, busy: m.ctrl.Pending(t.ID)})
	}
	done, open := m.ctrl.Stats()
	m.list.Title = Header(done, open)
	return m.list.SetItems(items)
}

// batch drops nil commands so a single command is returned as is.
func batch(cmds ...tea.Cmd) tea.Cmd {
	var valid []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return tea.Batch(valid...)
}
