package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskdeck/internal/catalog"
	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/ui"
)

func (a *App) doCharacters(ctx context.Context) int {
	var st catalog.State
	if a.Interactive {
		var err error
		st, err = loadWithSpinner(ctx, a.Catalog, a.In, a.Out)
		if err != nil {
			ui.Fail(a.Err, "characters: "+err.Error())
			return 1
		}
	} else {
		st = a.Catalog.Load(ctx)
	}

	switch st.Phase {
	case catalog.Failed:
		ui.Fail(a.Err, st.Err)
		return 1
	case catalog.Loaded:
		if len(st.Items) == 0 {
			ui.Hint(a.Out, "no characters")
			return 0
		}
		lines := []string{ui.Title.Render(fmt.Sprintf("Characters (%d)", len(st.Items))), ""}
		for _, c := range st.Items {
			lines = append(lines, characterLine(c))
		}
		ui.Panel(a.Out, lines)
		return 0
	}
	ui.Hint(a.Err, "canceled")
	return 1
}

func characterLine(c model.Character) string {
	var mark string
	switch c.Status {
	case model.StatusAlive:
		mark = ui.Success.Render("♥")
	case model.StatusDead:
		mark = ui.Error.Render("✖")
	default:
		mark = ui.Muted.Render("?")
	}
	return fmt.Sprintf("%s %s %s  %s",
		ui.Muted.Render(fmt.Sprintf("%3d", c.ID)), mark, ui.Truncate(c.Name, 40),
		ui.Muted.Render(fmt.Sprintf("%s · %s · %s", c.Status, c.Gender, c.Location.Name)))
}

type loadedMsg catalog.State

type spinnerModel struct {
	spinner spinner.Model
	load    tea.Cmd
	done    bool
}

func (m spinnerModel) Init() tea.Cmd { return tea.Batch(m.spinner.Tick, m.load) }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " fetching characters..."
}

// loadWithSpinner runs view.Load while a spinner is on screen. Quitting early
// cancels the request and reports the view as it stood, still Loading.
func loadWithSpinner(ctx context.Context, view *catalog.View, in io.Reader, out io.Writer) (catalog.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.Accent
	m := spinnerModel{
		spinner: sp,
		load:    func() tea.Msg { return loadedMsg(view.Load(ctx)) },
	}
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return catalog.State{}, err
	}
	return view.State(), nil
}
