package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/tasks"
	"github.com/idilsaglam/taskdeck/internal/ui"
)

// listItem adapts model.Task to bubbles/list.Item
type listItem struct {
	ID   string
	Text string
	Done bool
}

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// single line rows
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	text := it.Text
	if it.Done {
		text = ui.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, ui.Box(it.Done), text)
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeEdit
)

// taskListModel writes every change through the manager as it happens.
type taskListModel struct {
	ctx  context.Context
	mgr  *tasks.Manager
	list list.Model

	mode   inputMode
	editID string
	ti     textinput.Model
	status string
}

func toListItems(ts []model.Task) []list.Item {
	out := make([]list.Item, 0, len(ts))
	for _, t := range ts {
		out = append(out, listItem{ID: t.ID, Text: t.Title, Done: t.IsDone})
	}
	return out
}

func newTaskListModel(ctx context.Context, mgr *tasks.Manager) taskListModel {
	l := list.New(toListItems(mgr.Tasks()), itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Title
	l.Styles.HelpStyle = ui.Help
	l.Styles.PaginationStyle = ui.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	extra := func() []key.Binding { return []key.Binding{addBind, editBind, toggleBind, delBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := taskListModel{ctx: ctx, mgr: mgr, list: l, ti: ti}
	m.list.Title = m.title()
	return m
}

// runTaskList starts the Bubble Tea list over mgr.
func runTaskList(ctx context.Context, mgr *tasks.Manager, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newTaskListModel(ctx, mgr),
		tea.WithAltScreen(), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	_, err := p.Run()
	return err
}

func (m taskListModel) title() string {
	dn, pn := m.mgr.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		ui.Title.Render("Todos"),
		ui.Success.Render("✔"), dn,
		ui.Pending.Render("•"), pn,
		ui.Accent.Render("Total"), m.mgr.Len(),
	)
}

// refresh reloads the rows from the manager after a mutation.
func (m *taskListModel) refresh(err error) tea.Cmd {
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
	m.list.Title = m.title()
	return m.list.SetItems(toListItems(m.mgr.Tasks()))
}

func (m taskListModel) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m taskListModel) position(id string) int {
	for i, t := range m.mgr.Tasks() {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m taskListModel) Init() tea.Cmd { return nil }

func (m taskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(sz.Width-4, sz.Height-6)
		return m, nil
	}

	if m.mode != modeBrowse {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "enter":
				var err error
				if m.mode == modeAdd {
					err = m.mgr.Add(m.ctx, m.ti.Value())
				} else {
					err = m.mgr.Rename(m.ctx, m.editID, m.ti.Value())
				}
				m.mode = modeBrowse
				m.ti.SetValue("")
				m.ti.Blur()
				cmd := m.refresh(err)
				return m, cmd
			case "esc":
				m.mode = modeBrowse
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// keys go to the filter input while the user is typing a filter
	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ", "space":
			if it, ok := m.selected(); ok {
				cmd := m.refresh(m.mgr.Toggle(m.ctx, it.ID))
				return m, cmd
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				if i := m.position(it.ID); i >= 0 {
					cmd := m.refresh(m.mgr.Delete(m.ctx, i))
					return m, cmd
				}
			}
			return m, nil
		case "a":
			m.mode = modeAdd
			m.ti.SetValue("")
			m.ti.Placeholder = "New task title..."
			m.ti.Focus()
			return m, textinput.Blink
		case "e":
			if it, ok := m.selected(); ok {
				m.mode = modeEdit
				m.editID = it.ID
				m.ti.SetValue(it.Text)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit task title..."
				m.ti.Focus()
				return m, textinput.Blink
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m taskListModel) View() string {
	content := m.list.View()
	if m.mode != modeBrowse {
		title := "Add task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		content += "\n" + ui.Border.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + ui.Error.Render(m.status)
	}
	return ui.Border.Render(content)
}
