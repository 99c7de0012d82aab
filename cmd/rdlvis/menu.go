// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iso15926vis/rdlvis/internal/history"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// snapshotStore is the part of history the menu drives.
type snapshotStore interface {
	List(ctx context.Context) ([]history.Snapshot, error)
	Use(ctx context.Context, name string) (*history.Snapshot, error)
	Delete(ctx context.Context, name string) error
}

// --- bubbletea messages ---

type snapshotsMsg struct {
	snapshots []history.Snapshot
	status    string
	used      string
}

type menuErrMsg struct{ err error }

// --- key bindings ---

type menuKeys struct {
	Up, Down, Use, Delete, Refresh, Quit key.Binding
}

func defaultMenuKeys() menuKeys {
	return menuKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Use:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "use")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k menuKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Use, k.Delete, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k menuKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// --- lipgloss styles ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// menuModel is the bubbletea model for the history menu.
type menuModel struct {
	ctx       context.Context
	store     snapshotStore
	snapshots []history.Snapshot
	cursor    int
	status    string
	errMsg    string
	// used is the last snapshot made current from the menu.
	used    string
	loading bool
	keys    menuKeys
	help    help.Model
}

func newMenuModel(ctx context.Context, store snapshotStore) menuModel {
	return menuModel{ctx: ctx, store: store, loading: true, keys: defaultMenuKeys(), help: help.New()}
}

func (m menuModel) Init() tea.Cmd {
	return m.listAfter("", "")
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotsMsg:
		m.loading = false
		m.snapshots = msg.snapshots
		m.status = msg.status
		m.errMsg = ""
		if msg.used != "" {
			m.used = msg.used
		}
		if m.cursor >= len(m.snapshots) {
			m.cursor = max(len(m.snapshots)-1, 0)
		}
		return m, nil

	case menuErrMsg:
		m.loading = false
		m.status = ""
		m.errMsg = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m menuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshots)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Use):
		if s, ok := m.selected(); ok {
			m.loading = true
			return m, m.useCmd(s.Name)
		}
	case key.Matches(msg, m.keys.Delete):
		s, ok := m.selected()
		if !ok {
			break
		}
		if s.Current {
			m.status = ""
			m.errMsg = "cannot delete the snapshot in use; use another one first"
			return m, nil
		}
		m.loading = true
		return m, m.deleteCmd(s.Name)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.listAfter("", "")
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) selected() (history.Snapshot, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshots) {
		return history.Snapshot{}, false
	}
	return m.snapshots[m.cursor], true
}

func (m menuModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  Snapshot History  ") + "\n\n")

	switch {
	case m.loading && len(m.snapshots) == 0:
		b.WriteString(dimStyle.Render("Loading…") + "\n")
	case len(m.snapshots) == 0:
		b.WriteString(dimStyle.Render("No snapshots recorded.") + "\n")
	default:
		for i, s := range m.snapshots {
			line := fmt.Sprintf("%s  %8d triples  %s", s.Name, s.Triples, s.CreatedAt.Local().Format(time.DateTime))
			if s.Current {
				line += "  " + successStyle.Render("(in use)")
			}
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("  > "+line) + "\n")
			} else {
				b.WriteString(dimStyle.Render("    "+line) + "\n")
			}
		}
	}

	if m.status != "" {
		b.WriteString("\n" + successStyle.Render("  "+m.status) + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("  "+m.errMsg) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))

	return boxStyle.Render(b.String())
}

// --- tea.Cmd factories ---

// listAfter relists history, carrying status and the snapshot just used.
func (m menuModel) listAfter(status, used string) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		snaps, err := store.List(ctx)
		if err != nil {
			return menuErrMsg{err: err}
		}
		return snapshotsMsg{snapshots: snaps, status: status, used: used}
	}
}

func (m menuModel) useCmd(name string) tea.Cmd {
	ctx, store := m.ctx, m.store
	list := m.listAfter("Snapshot in use: "+name, name)
	return func() tea.Msg {
		if _, err := store.Use(ctx, name); err != nil {
			return menuErrMsg{err: err}
		}
		return list()
	}
}

func (m menuModel) deleteCmd(name string) tea.Cmd {
	ctx, store := m.ctx, m.store
	list := m.listAfter("Deleted "+name, "")
	return func() tea.Msg {
		if err := store.Delete(ctx, name); err != nil {
			if rdlerr.IsConflict(err) {
				return menuErrMsg{err: fmt.Errorf("cannot delete %s: it is in use", name)}
			}
			return menuErrMsg{err: err}
		}
		return list()
	}
}
