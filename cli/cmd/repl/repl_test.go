package repl

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(t *testing.T, m model, text string) model {
	t.Helper()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	mm, ok := next.(model)
	require.True(t, ok)

	return mm
}

func press(t *testing.T, m model, key tea.KeyType) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(tea.KeyMsg{Type: key})

	mm, ok := next.(model)
	require.True(t, ok)

	return mm, cmd
}

func TestModel_CompleteAndExecute(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	require.NoError(t, s.Execute(ctx, "staff = a@x.com; admins = b@x.com").Err)

	m := newModel(ctx, s, NewHistory(""))

	m = typeText(t, m, "sta")
	require.Len(t, m.matches, 1)
	assert.Equal(t, "staff", m.matches[0].Str)

	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, "staff", m.input.Value())

	m, cmd := press(t, m, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"staff"}, m.history.Entries())
	assert.False(t, m.quitting)
}

func TestModel_MetaCompletion(t *testing.T) {
	m := newModel(context.Background(), newTestSession(t), NewHistory(""))

	m = typeText(t, m, "!he")
	require.NotEmpty(t, m.matches)
	assert.Equal(t, "!help", m.matches[0].Str)
	assert.Equal(t, 0, m.wordStart)
}

func TestModel_History(t *testing.T) {
	h := NewHistory("")
	_, _ = h.Write("first@x.com")
	_, _ = h.Write("second@x.com")

	m := newModel(context.Background(), newTestSession(t), h)

	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, "second@x.com", m.input.Value())

	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, "first@x.com", m.input.Value())

	m, _ = press(t, m, tea.KeyDown)
	assert.Equal(t, "second@x.com", m.input.Value())

	m, _ = press(t, m, tea.KeyDown)
	assert.Empty(t, m.input.Value())
}

func TestModel_EmptyLineQuits(t *testing.T) {
	m := newModel(context.Background(), newTestSession(t), NewHistory(""))

	m, cmd := press(t, m, tea.KeyEnter)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
