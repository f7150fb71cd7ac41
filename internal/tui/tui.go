// Package tui is the interactive list and add/edit sheet over a record store.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todonotes/internal/model"
	"github.com/idilsaglam/todonotes/internal/records"
	"github.com/idilsaglam/todonotes/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ model.Item }

func (i listItem) Title() string       { return i.Item.Title }
func (i listItem) Description() string { return i.Day + " " + i.Time }
func (i listItem) FilterValue() string { return i.Item.Title }

// Custom delegate: title on the left, day and time on the right.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s  %s", prefix, ui.Truncate(it.Item.Title, 50), ui.MutedStyle.Render(it.Description()))
}

// feed receives store notifications; the model drains it after each update.
type feed struct {
	items []model.Item
	dirty bool
}

type modelTUI struct {
	ctx   context.Context
	store *records.Store
	now   func() time.Time
	feed  *feed

	list          list.Model
	status        string
	width, height int

	// sheet
	open   bool
	editID string // empty when adding
	title  textinput.Model
	msg    textarea.Model
	onMsg  bool   // focus is on the message field
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	openBind   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
)

func newModel(ctx context.Context, s *records.Store, now func() time.Time) modelTUI {
	l := list.New(toListItems(s.Items()), itemDelegate{}, 0, 0)
	l.Title = "ToDo"
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.TitleStyle
	l.Styles.HelpStyle = ui.HelpStyle
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, openBind, deleteBind} }
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	f := &feed{}
	s.Subscribe(func(items []model.Item) {
		f.items = items
		f.dirty = true
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Title"
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Message"
	ta.ShowLineNumbers = false
	ta.SetHeight(4)

	m := modelTUI{
		ctx:   ctx,
		store: s,
		now:   now,
		feed:  f,
		list:   l,
		title:  ti,
		msg:    ta,
		width:  80,
		height: 24,
	}
	if err := s.LoadErr(); err != nil {
		m.status = err.Error()
	}
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, s *records.Store, now func() time.Time) error {
	p := tea.NewProgram(newModel(ctx, s, now), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{it})
	}
	return out
}

func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
	}

	var cmd tea.Cmd
	if m.open {
		m, cmd = m.updateSheet(msg)
	} else {
		m, cmd = m.updateList(msg)
	}
	if m.feed.dirty {
		m.feed.dirty = false
		cmd = tea.Batch(cmd, m.list.SetItems(toListItems(m.feed.items)))
	}
	return m, cmd
}

func (m modelTUI) updateList(msg tea.Msg) (modelTUI, tea.Cmd) {
	if x, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch x.String() {
		case "q", "esc":
			return m, tea.Quit
		case "a":
			return m.openSheet(model.Item{})
		case "enter":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				return m.openSheet(it.Item)
			}
			return m, nil
		case "d":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				m.status = ""
				if err := m.store.Delete(m.ctx, it.ID); err != nil {
					m.status = err.Error()
				}
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// openSheet shows the sheet prefilled with it; a zero item means add.
func (m modelTUI) openSheet(it model.Item) (modelTUI, tea.Cmd) {
	m.open = true
	m.editID = it.ID
	m.onMsg = false
	m.title.SetValue(it.Title)
	m.title.CursorEnd()
	m.msg.SetValue(it.Message)
	m.msg.Blur()
	return m, m.title.Focus()
}

func (m modelTUI) closeSheet() modelTUI {
	m.open = false
	m.editID = ""
	m.title.Blur()
	m.msg.Blur()
	return m
}

func (m modelTUI) updateSheet(msg tea.Msg) (modelTUI, tea.Cmd) {
	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "esc":
			return m.closeSheet(), nil
		case "tab", "shift+tab":
			m.onMsg = !m.onMsg
			if m.onMsg {
				m.title.Blur()
				return m, m.msg.Focus()
			}
			m.msg.Blur()
			return m, m.title.Focus()
		case "ctrl+s":
			return m.save(), nil
		}
	}
	var cmd tea.Cmd
	if m.onMsg {
		m.msg, cmd = m.msg.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

func (m modelTUI) save() modelTUI {
	title := strings.TrimSpace(m.title.Value())
	if title == "" {
		m.status = "Title cannot be empty"
		return m
	}
	var err error
	if m.editID != "" {
		err = m.store.Update(m.ctx, m.editID, title, m.msg.Value(), m.now())
	} else {
		_, err = m.store.Add(m.ctx, title, m.msg.Value(), m.now())
	}
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
	return m.closeSheet()
}

func (m modelTUI) View() string {
	listHeight := m.height - 4
	if m.open {
		listHeight = m.height - 12
	}
	m.list.SetSize(m.width-2, max(listHeight, 1))
	m.msg.SetWidth(max(m.width-8, 10))

	content := m.list.View()
	if m.open {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		heading := "Add new item"
		if m.editID != "" {
			heading = "Edit item"
		}
		heading += ui.HelpStyle.Render("  tab switch · ctrl+s save · esc cancel")
		content += "\n" + bar.Render(heading+"\n"+m.title.View()+"\n"+m.msg.View())
	}
	if m.status != "" {
		content += "\n" + ui.ErrorStyle.Render(m.status)
	}
	return ui.PanelString(content)
}
