package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
)

// SyncOutcome is what syncing one tree produced
type SyncOutcome struct {
	Added int
	// Note explains a partial sync, such as a changeset missing locally
	Note string
}

// SyncFunc syncs the idx-th tree
type SyncFunc func(idx int) (SyncOutcome, error)

type syncStatus int

const (
	syncPending syncStatus = iota
	syncRunning
	syncDone
	syncFailed
)

type syncItem struct {
	tree    string
	status  syncStatus
	outcome SyncOutcome
	err     error
}

// syncResultMsg is sent when one tree finishes
type syncResultMsg struct {
	idx     int
	outcome SyncOutcome
	err     error
}

// syncProgressModel syncs trees one at a time behind a spinner
type syncProgressModel struct {
	items    []syncItem
	current  int
	spinner  spinner.Model
	run      func(idx int) tea.Cmd
	done     bool
	quitting bool
}

func newSyncProgressModel(trees []string, sync SyncFunc) syncProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	items := make([]syncItem, len(trees))
	for i, tree := range trees {
		items[i] = syncItem{tree: tree}
	}
	return syncProgressModel{
		items:   items,
		spinner: s,
		run: func(idx int) tea.Cmd {
			return func() tea.Msg {
				outcome, err := sync(idx)
				return syncResultMsg{idx: idx, outcome: outcome, err: err}
			}
		},
	}
}

func (m syncProgressModel) Init() tea.Cmd {
	if len(m.items) == 0 {
		return tea.Quit
	}
	m.items[0].status = syncRunning
	return tea.Batch(m.spinner.Tick, m.run(0))
}

func (m syncProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncResultMsg:
		item := &m.items[msg.idx]
		item.outcome = msg.outcome
		item.err = msg.err
		item.status = syncDone
		if msg.err != nil {
			item.status = syncFailed
		}

		m.current++
		if m.current < len(m.items) {
			m.items[m.current].status = syncRunning
			return m, tea.Batch(m.spinner.Tick, m.run(m.current))
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m syncProgressModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	for _, item := range m.items {
		b.WriteString(m.itemLine(item))
		b.WriteString("\n")
	}
	return b.String()
}

func (m syncProgressModel) itemLine(item syncItem) string {
	switch item.status {
	case syncRunning:
		return fmt.Sprintf("  %s %s %s", m.spinner.View(), item.tree, ColorDim("syncing..."))
	case syncDone, syncFailed:
		return resultLine(item)
	default:
		return fmt.Sprintf("  %s %s", ColorDim("○"), ColorDim(item.tree))
	}
}

func resultLine(item syncItem) string {
	if item.status == syncFailed {
		return fmt.Sprintf("  %s %s: %v", ColorRed("✗"), item.tree, item.err)
	}
	line := fmt.Sprintf("  %s %s: %d new pushes", ColorGreen("✓"), item.tree, item.outcome.Added)
	if item.outcome.Note != "" {
		line += " " + ColorYellow("("+item.outcome.Note+")")
	}
	return line
}

// errors combines the failures of every tree
func (m syncProgressModel) errors() error {
	var errs error
	for _, item := range m.items {
		errs = multierr.Append(errs, item.err)
	}
	return errs
}

// RunSyncProgress syncs trees in order. A terminal gets a live spinner view;
// elsewhere each tree gets one status line. Every tree is attempted and all
// failures are returned together.
func RunSyncProgress(trees []string, sync SyncFunc, splog *Splog) error {
	if !IsTTY() {
		return runSyncPlain(trees, sync, splog)
	}

	// Log lines would tear the live view
	wasQuiet := splog.IsQuiet()
	splog.SetQuiet(true)
	defer splog.SetQuiet(wasQuiet)

	p := tea.NewProgram(newSyncProgressModel(trees, sync), tea.WithInput(os.Stdin), tea.WithOutput(splog.Writer()))
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(syncProgressModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if m.quitting {
		return ErrCanceled
	}
	return m.errors()
}

func runSyncPlain(trees []string, sync SyncFunc, splog *Splog) error {
	var errs error
	for i, tree := range trees {
		item := syncItem{tree: tree, status: syncDone}
		item.outcome, item.err = sync(i)
		if item.err != nil {
			item.status = syncFailed
			errs = multierr.Append(errs, item.err)
		}
		// Notes were already logged as warnings while syncing
		item.outcome.Note = ""
		splog.Info("%s", resultLine(item))
	}
	return errs
}
