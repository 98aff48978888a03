package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/idilsaglam/taskdeck/internal/auth"
	"github.com/idilsaglam/taskdeck/internal/catalog"
	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/tasks"
	"github.com/idilsaglam/taskdeck/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// App carries the services built by main. Auth must already have restored the
// stored session.
type App struct {
	Auth    *auth.Service
	Catalog *catalog.View

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive enables the bubbletea views; off when stdout is not a terminal.
	Interactive bool
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (a *App) Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		a.PrintHelp()
		return 2
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		a.PrintHelp()
		return 0

	case "register":
		if len(rest) != 3 {
			ui.Fail(a.Err, "usage: taskdeck register <first name> <last name> <nickname>")
			return 2
		}
		return a.doRegister(ctx, rest[0], rest[1], rest[2])

	case "login":
		if len(rest) != 1 {
			ui.Fail(a.Err, "usage: taskdeck login <nickname>")
			return 2
		}
		return a.doLogin(ctx, rest[0])

	case "logout":
		return a.doLogout(ctx)

	case "whoami":
		return a.doWhoAmI()

	case "ls":
		return a.withTasks(func(m *tasks.Manager) int { return a.doList(m, opt) })

	case "add":
		if len(rest) == 0 {
			ui.Fail(a.Err, "usage: taskdeck add <title...>")
			return 2
		}
		return a.withTasks(func(m *tasks.Manager) int { return a.doAdd(ctx, m, strings.Join(rest, " ")) })

	case "done":
		if len(rest) != 1 {
			ui.Fail(a.Err, "usage: taskdeck done <index>")
			return 2
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			ui.Fail(a.Err, "done: not a number: "+rest[0])
			return 2
		}
		return a.withTasks(func(m *tasks.Manager) int { return a.doToggle(ctx, m, n) })

	case "rm":
		if len(rest) == 0 {
			ui.Fail(a.Err, "usage: taskdeck rm <index...>")
			return 2
		}
		idx := make([]int, 0, len(rest))
		for _, s := range rest {
			n, err := strconv.Atoi(s)
			if err != nil {
				ui.Fail(a.Err, "rm: not a number: "+s)
				return 2
			}
			idx = append(idx, n)
		}
		return a.withTasks(func(m *tasks.Manager) int { return a.doRemove(ctx, m, idx) })

	case "edit":
		if len(rest) < 2 {
			ui.Fail(a.Err, "usage: taskdeck edit <index> <title...>")
			return 2
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			ui.Fail(a.Err, "edit: not a number: "+rest[0])
			return 2
		}
		return a.withTasks(func(m *tasks.Manager) int { return a.doEdit(ctx, m, n, strings.Join(rest[1:], " ")) })

	case "tui":
		if !a.Interactive {
			ui.Fail(a.Err, "tui: stdout is not a terminal")
			return 2
		}
		return a.withTasks(func(m *tasks.Manager) int {
			if err := runTaskList(ctx, m, a.In, a.Out); err != nil {
				ui.Fail(a.Err, "tui: "+err.Error())
				return 1
			}
			return 0
		})

	case "characters":
		return a.doCharacters(ctx)
	}

	ui.Fail(a.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(a.Err)
	a.PrintHelp()
	return 2
}

func (a *App) PrintHelp() {
	fmt.Fprint(a.Out, `taskdeck - a tiny to-do list with a local account

Usage:
  taskdeck [-group] [-env file] <subcommand> [args]

Account:
  register <first> <last> <nickname>   Create the local account (replaces any previous one)
  login <nickname>                     Log in; the password is read from stdin
  logout                               Forget the session, keep the account
  whoami                               Show who is logged in

Tasks (login required):
  add <title...>       Add a task (title can be multiple words)
  ls                   List tasks
  done <index>         Toggle done for task at 1-based index
  rm <index...>        Remove tasks at 1-based indexes
  edit <index> <title...>  Rename a task
  tui                  Interactive task list

Catalog:
  characters           Fetch characters from the catalog API

Examples:
  taskdeck register Alice Liddell alice
  taskdeck login alice
  taskdeck add "Buy milk"
  taskdeck rm 1 3
`)
}

// -------------- account ----------------

func (a *App) doRegister(ctx context.Context, first, last, nick string) int {
	pw, err := a.prompt("Password: ")
	if err != nil {
		ui.Fail(a.Err, "read password: "+err.Error())
		return 1
	}
	if err := auth.ValidateRegistration(first, last, nick, pw); err != nil {
		ui.Fail(a.Err, err.Error())
		return 2
	}
	if err := a.Auth.Register(ctx, first, last, nick, pw); err != nil {
		ui.Fail(a.Err, "register: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "registered "+nick)
	ui.Hint(a.Out, "Next: taskdeck login "+nick)
	return 0
}

func (a *App) doLogin(ctx context.Context, nick string) int {
	pw, err := a.prompt("Password: ")
	if err != nil {
		ui.Fail(a.Err, "read password: "+err.Error())
		return 1
	}
	if err := a.Auth.Login(ctx, nick, pw); err != nil {
		ui.Fail(a.Err, "login: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "logged in as "+nick)
	return 0
}

func (a *App) doLogout(ctx context.Context) int {
	if a.Auth.State() == auth.Unauthenticated {
		ui.OK(a.Out, "not logged in (nothing to do)")
		return 0
	}
	if err := a.Auth.Logout(ctx); err != nil {
		ui.Fail(a.Err, "logout: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "logged out")
	return 0
}

func (a *App) doWhoAmI() int {
	u, ok := a.Auth.User()
	if !ok {
		fmt.Fprintln(a.Out, ui.Muted.Render("not logged in"))
		fmt.Fprintln(a.Out, "Run: taskdeck login <nickname>")
		return 0
	}
	fmt.Fprintf(a.Out, "nickname: %s\n", u.Nickname)
	fmt.Fprintf(a.Out, "name: %s %s\n", u.FirstName, u.LastName)
	fmt.Fprintf(a.Out, "tasks: %d\n", len(u.Tasks))
	return 0
}

// prompt writes label to Out and reads one line from In. On an interactive
// terminal the input is not echoed.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.Out, label)
	if fd, ok := terminalFd(a.In); ok && a.Interactive {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(a.Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalFd returns the descriptor behind in when it is a terminal.
func terminalFd(in io.Reader) (uintptr, bool) {
	f, ok := in.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	return f.Fd(), term.IsTerminal(f.Fd())
}

// -------------- tasks ----------------

// withTasks requires a session and builds the manager from it.
func (a *App) withTasks(fn func(m *tasks.Manager) int) int {
	if a.Auth.State() != auth.Authenticated {
		ui.Fail(a.Err, "not logged in. Run `taskdeck login <nickname>`")
		return 2
	}
	return fn(tasks.NewManager(a.Auth))
}

func (a *App) doList(m *tasks.Manager, opt Options) int {
	items := m.Tasks()
	d, p := m.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.Title.Render("Todos"),
		ui.Success.Render("✔"), d,
		ui.Pending.Render("•"), p,
		ui.Accent.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.Muted.Render("Tip: add with `taskdeck add \"Buy milk\"`"))
	ui.Panel(a.Out, lines)
	return 0
}

func (a *App) doAdd(ctx context.Context, m *tasks.Manager, title string) int {
	before := m.Len()
	if err := m.Add(ctx, title); err != nil {
		ui.Fail(a.Err, "add: "+err.Error())
		return 1
	}
	if m.Len() == before {
		ui.Hint(a.Out, "nothing added (blank title)")
		return 0
	}
	ui.OK(a.Out, "added")
	return 0
}

func (a *App) doToggle(ctx context.Context, m *tasks.Manager, userIndex int) int {
	idx, ok := a.resolve(m, userIndex)
	if !ok {
		return 2
	}
	if err := m.Toggle(ctx, m.Tasks()[idx].ID); err != nil {
		ui.Fail(a.Err, "done: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "toggled")
	return 0
}

func (a *App) doRemove(ctx context.Context, m *tasks.Manager, userIndexes []int) int {
	idx := make([]int, 0, len(userIndexes))
	for _, n := range userIndexes {
		i, ok := a.resolve(m, n)
		if !ok {
			return 2
		}
		idx = append(idx, i)
	}
	if err := m.Delete(ctx, idx...); err != nil {
		ui.Fail(a.Err, "rm: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "removed")
	return 0
}

func (a *App) doEdit(ctx context.Context, m *tasks.Manager, userIndex int, title string) int {
	idx, ok := a.resolve(m, userIndex)
	if !ok {
		return 2
	}
	if strings.TrimSpace(title) == "" {
		ui.Fail(a.Err, "edit: empty title")
		return 2
	}
	if err := m.Rename(ctx, m.Tasks()[idx].ID, title); err != nil {
		ui.Fail(a.Err, "edit: "+err.Error())
		return 1
	}
	ui.OK(a.Out, "renamed")
	return 0
}

// resolve maps a 1-based index to a position, reporting out-of-range input.
func (a *App) resolve(m *tasks.Manager, userIndex int) (int, bool) {
	if userIndex < 1 || userIndex > m.Len() {
		ui.Fail(a.Err, fmt.Sprintf("index out of range: have %d, got %d", m.Len(), userIndex))
		ui.Hint(a.Err, "Hint: run `taskdeck ls` to see valid indexes")
		return 0, false
	}
	return userIndex - 1, true
}

// -------------- rendering helpers --------------

// taskLine renders one task with its 1-based position in the full list.
func taskLine(pos int, it model.Task) string {
	title := ui.Truncate(it.Title, 80)
	if it.IsDone {
		title = ui.Done.Render(title)
	}
	return fmt.Sprintf("%s %s %s", ui.Muted.Render(fmt.Sprintf("%2d.", pos+1)), ui.Box(it.IsDone), title)
}

func flatLines(items []model.Task) []string {
	if len(items) == 0 {
		return []string{ui.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, taskLine(i, it))
	}
	return out
}

// groupLines keeps each task's position from the full list so indexes still
// work with done/rm.
func groupLines(items []model.Task) []string {
	var pend, done []string
	for i, it := range items {
		if it.IsDone {
			done = append(done, taskLine(i, it))
		} else {
			pend = append(pend, taskLine(i, it))
		}
	}
	var lines []string
	lines = append(lines, ui.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	} else {
		lines = append(lines, pend...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}
