package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskpage/internal/logging"
	"github.com/idilsaglam/taskpage/internal/model"
	"github.com/idilsaglam/taskpage/internal/page"
	"github.com/idilsaglam/taskpage/internal/service"
	"github.com/idilsaglam/taskpage/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
	Yes   bool // skip the delete confirmation
}

// Runner dispatches subcommands against a task service.
type Runner struct {
	Service service.Service
	Logger  *log.Logger
	Options Options

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// UI runs the interactive page. Defaults to ui.Run.
	UI func(ctx context.Context, ctrl *page.Controller) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// No subcommand opens the interactive page.
func (r *Runner) Run(ctx context.Context, args []string) int {
	r.defaults()
	if len(args) == 0 {
		return r.doUI(ctx)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0

	case "ui":
		return r.doUI(ctx)

	case "ls":
		return r.doList(ctx)

	case "add":
		return r.doAdd(ctx, a)

	case "edit":
		if len(a) < 2 {
			r.fail("usage: taskpage edit <index> <title...>")
			return 2
		}
		n, ok := r.index("edit", a[0])
		if !ok {
			return 2
		}
		return r.doEdit(ctx, n, strings.Join(a[1:], " "))

	case "done":
		if len(a) != 1 {
			r.fail("usage: taskpage done <index>")
			return 2
		}
		n, ok := r.index("done", a[0])
		if !ok {
			return 2
		}
		return r.doToggle(ctx, n)

	case "rm":
		if len(a) != 1 {
			r.fail("usage: taskpage rm <index>")
			return 2
		}
		n, ok := r.index("rm", a[0])
		if !ok {
			return 2
		}
		return r.doRemove(ctx, n)
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.Err)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.Out, `taskpage - a small client for a remote task list

Usage:
  taskpage [flags] <subcommand> [args]

Subcommands:
  ui                         Open the interactive page (default)
  ls                         List tasks
  add [-d text] <title...>   Add a task (title can be multiple words)
  edit <index> <title...>    Rename the task at 1-based index
  done <index>               Toggle done for the task at 1-based index
  rm <index>                 Remove the task at 1-based index (asks first)
  help                       Show this help

Flags:
  -base-url URL   task API base URL (env TASKS_API_BASE_URL)
  -timeout D      timeout for a single API call (default 10s)
  -theme NAME     classic, neon or mono
  -group          group ls output by pending/done
  -yes            do not ask before rm
  -config FILE    TOML config file
  -log-file FILE  log file path
  -log-level LVL  debug, info, warn, error

Examples:
  taskpage add "Buy milk"
  taskpage add -d "two litres" Buy milk
  taskpage ls
  taskpage done 2
  taskpage rm 3
`)
}

// -------------- subcommand impls ----------------

func (r *Runner) doUI(ctx context.Context) int {
	run := r.UI
	if run == nil {
		run = ui.Run
	}
	if err := run(ctx, r.controller(ctx)); err != nil {
		r.Logger.Error("ui exited", "err", err)
		r.fail("ui: " + err.Error())
		return 1
	}
	return 0
}

func (r *Runner) doList(ctx context.Context) int {
	ctrl, ok := r.load(ctx)
	if !ok {
		return 1
	}
	tasks := ctrl.Tasks()
	d, p := ctrl.Stats()
	t := ui.Current()

	lines := []string{
		ui.Header(d, p),
		t.Muted.Render(ui.ProgressBar(d, d+p, 28)),
		"",
		ui.TaskList(tasks, r.Options.Group),
		"",
		t.Muted.Render("Tip: add with `taskpage add \"Buy milk\"`"),
	}
	fmt.Fprintln(r.Out, ui.Panel(lines))
	return 0
}

func (r *Runner) doAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(r.Err)
	desc := fs.String("d", "", "task description")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		r.fail("usage: taskpage add [-d description] <title...>")
		return 2
	}
	in := model.CreateTaskInput{Title: strings.Join(fs.Args(), " "), Description: *desc}
	if errs := model.Validate(in); !errs.Valid() {
		r.failFields(errs)
		return 2
	}

	// no list call: creating needs nothing from the current collection
	ctrl := r.controller(ctx)
	ctrl.Exec(ctrl.SubmitInput(in))
	if msg := ctrl.Err(); msg != "" {
		r.fail(msg)
		return 1
	}
	tasks := ctrl.Tasks()
	r.ok(fmt.Sprintf("added %q", tasks[len(tasks)-1].Title))
	return 0
}

func (r *Runner) doEdit(ctx context.Context, userIndex int, title string) int {
	if errs := model.Validate(model.CreateTaskInput{Title: title}); !errs.Valid() {
		r.failFields(errs)
		return 2
	}
	ctrl, ok := r.load(ctx)
	if !ok {
		return 1
	}
	task, ok := r.taskAt(ctrl, userIndex)
	if !ok {
		return 2
	}
	if !ctrl.Exec(ctrl.Rename(task.ID, title)) {
		r.ok("unchanged")
		return 0
	}
	if msg := ctrl.Err(); msg != "" {
		r.fail(msg)
		return 1
	}
	r.ok("renamed")
	return 0
}

func (r *Runner) doToggle(ctx context.Context, userIndex int) int {
	ctrl, ok := r.load(ctx)
	if !ok {
		return 1
	}
	task, ok := r.taskAt(ctrl, userIndex)
	if !ok {
		return 2
	}
	ctrl.Exec(ctrl.Toggle(task.ID))
	if msg := ctrl.Err(); msg != "" {
		r.fail(msg)
		return 1
	}
	updated, _ := ctrl.Task(task.ID)
	if updated.Completed {
		r.ok("done")
	} else {
		r.ok("reopened")
	}
	return 0
}

func (r *Runner) doRemove(ctx context.Context, userIndex int) int {
	ctrl, ok := r.load(ctx)
	if !ok {
		return 1
	}
	task, ok := r.taskAt(ctrl, userIndex)
	if !ok {
		return 2
	}
	if !ctrl.Exec(ctrl.Delete(task.ID, r.confirmer())) {
		r.ok("kept")
		return 0
	}
	if msg := ctrl.Err(); msg != "" {
		r.fail(msg)
		return 1
	}
	r.ok("removed")
	return 0
}

// -------------- helpers --------------

func (r *Runner) defaults() {
	if r.Logger == nil {
		r.Logger = logging.Discard()
	}
	if r.In == nil {
		r.In = os.Stdin
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.Err == nil {
		r.Err = os.Stderr
	}
}

func (r *Runner) controller(ctx context.Context) *page.Controller {
	return page.New(ctx, r.Service, r.Logger)
}

// load returns a controller holding the current task list.
func (r *Runner) load(ctx context.Context) (*page.Controller, bool) {
	ctrl := r.controller(ctx)
	ctrl.Exec(ctrl.Load())
	if msg := ctrl.Err(); msg != "" {
		r.fail(msg)
		return nil, false
	}
	return ctrl, true
}

func (r *Runner) index(cmd, arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		r.fail(cmd + ": not a number: " + arg)
		return 0, false
	}
	return n, true
}

func (r *Runner) taskAt(ctrl *page.Controller, userIndex int) (model.Task, bool) {
	tasks := ctrl.Tasks()
	if userIndex < 1 || userIndex > len(tasks) {
		r.fail(fmt.Sprintf("index out of range: have %d, got %d", len(tasks), userIndex))
		fmt.Fprintln(r.Err, ui.Current().Muted.Render("Hint: run `taskpage ls` to see valid indexes"))
		return model.Task{}, false
	}
	return tasks[userIndex-1], true
}

// confirmer asks on the terminal unless -yes was given.
func (r *Runner) confirmer() page.Confirmer {
	if r.Options.Yes {
		return func(model.Task) bool { return true }
	}
	return func(t model.Task) bool {
		fmt.Fprintf(r.Out, "Delete %q? [y/N] ", t.Title)
		line, err := bufio.NewReader(r.In).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func (r *Runner) ok(msg string)   { ui.OK(r.Out, msg) }
func (r *Runner) fail(msg string) { ui.Fail(r.Err, msg) }

func (r *Runner) failFields(errs model.TaskFormErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		r.fail(errs[f])
	}
}
