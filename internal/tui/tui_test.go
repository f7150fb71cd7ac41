package tui

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todonotes/internal/model"
	"github.com/idilsaglam/todonotes/internal/records"
	"github.com/idilsaglam/todonotes/internal/store/jsonstore"
)

var fixedNow = func() time.Time { return time.Unix(1_600_000_000, 0).UTC() }

func helperModel(t *testing.T) (modelTUI, *records.Store) {
	t.Helper()

	b, err := jsonstore.Open(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	s := records.New(context.Background(), b, records.WithLogger(log.New(io.Discard)))
	return newModel(context.Background(), s, fixedNow), s
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(t *testing.T, m modelTUI, msgs ...tea.Msg) modelTUI {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(modelTUI)
		require.True(t, ok)
	}
	return m
}

func TestAddThroughSheet(t *testing.T) {
	m, s := helperModel(t)

	m = send(t, m, runes("a"))
	require.True(t, m.open)
	assert.Empty(t, m.editID)

	m = send(t, m,
		runes("Buy milk"),
		tea.KeyMsg{Type: tea.KeyTab},
		runes("2%, 1 gallon"),
		tea.KeyMsg{Type: tea.KeyCtrlS},
	)

	assert.False(t, m.open)
	assert.Empty(t, m.status)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].Title)
	assert.Equal(t, "2%, 1 gallon", items[0].Message)
	assert.Equal(t, "1600000000.0", items[0].ID)

	// the list follows the store
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "Buy milk", m.list.Items()[0].(listItem).Item.Title)
}

func TestEditThroughSheet(t *testing.T) {
	m, s := helperModel(t)
	_, err := s.Add(context.Background(), "old", "body", fixedNow())
	require.NoError(t, err)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Len(t, m.list.Items(), 1)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.open)
	assert.Equal(t, "1600000000.0", m.editID)
	assert.Equal(t, "old", m.title.Value())
	assert.Equal(t, "body", m.msg.Value())

	m = send(t, m, runes("er"), tea.KeyMsg{Type: tea.KeyCtrlS})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "older", items[0].Title)
	assert.Equal(t, "body", items[0].Message)
	assert.Equal(t, "older", m.list.Items()[0].(listItem).Item.Title)
}

func TestDeleteSelected(t *testing.T) {
	m, s := helperModel(t)
	ctx := context.Background()
	_, err := s.Add(ctx, "one", "", time.Unix(1, 0))
	require.NoError(t, err)
	_, err = s.Add(ctx, "two", "", time.Unix(2, 0))
	require.NoError(t, err)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = send(t, m, runes("d"))

	assert.Equal(t, []string{"two"}, titles(s.Items()))
	assert.Len(t, m.list.Items(), 1)
}

func TestSheetRejectsEmptyTitle(t *testing.T) {
	m, s := helperModel(t)

	m = send(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, m.open)
	assert.Equal(t, "Title cannot be empty", m.status)
	assert.Empty(t, s.Items())
}

func TestEscCancelsSheet(t *testing.T) {
	m, s := helperModel(t)

	m = send(t, m, runes("a"), runes("draft"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.open)
	assert.Empty(t, s.Items())
	assert.Equal(t, list.Unfiltered, m.list.FilterState())
}

func TestViewShowsSheet(t *testing.T) {
	m, _ := helperModel(t)
	assert.NotContains(t, m.View(), "Add new item")

	m = send(t, m, runes("a"))
	assert.Contains(t, m.View(), "Add new item")
}

func TestQuit(t *testing.T) {
	m, _ := helperModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func titles(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
