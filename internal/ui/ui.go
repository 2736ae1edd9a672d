package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amjp/internal/formatter"
	"github.com/desertthunder/amjp/internal/tasks"
)

// recentLimit bounds the lines of track activity kept on the sync view.
const recentLimit = 8

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

// Runner is the sync operation driven by the TUI.
type Runner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.RunOpts) (*tasks.RunResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       Runner
	opts         tasks.RunOpts
	width        int
	height       int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan syncComplete
	progress     tasks.ProgressUpdate
	recent       []string
	stopping     bool
	resultList   list.Model
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for one sync configuration.
func NewModel(ctx context.Context, engine Runner, opts tasks.RunOpts) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.MarginBottom(0)

	return &Model{
		ctx:     ctx,
		view:    ConfirmView,
		engine:  engine,
		opts:    opts,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init waits for confirmation; nothing runs until the user starts the sync.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Result returns the last completed run and its error.
func (m *Model) Result() (*tasks.RunResult, error) {
	return m.result, m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.resultList.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgSyncComplete:
			done := msg.data.(syncComplete)
			m.finish(done.result, done.err)
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		return m, tea.Batch(m.spinner.Tick, m.startSync())
	}
	return m, nil
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && m.cancel != nil {
		m.stopping = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resultList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ConfirmView
		m.result = nil
		m.err = nil
		m.recent = nil
		m.stopping = false
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	m.progress = update
	if _, ok := update.Data.(tasks.TrackResult); ok {
		m.recent = append(m.recent, update.Message)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
	}
}

func (m *Model) finish(result *tasks.RunResult, err error) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.progressChan = nil
	m.done = nil
	m.result = result
	m.err = err
	m.view = ResultView

	var items []list.Item
	if result != nil {
		items = resultItems(result.Tracks)
	}
	m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.resultList.Title = "Looked-up tracks"
	m.resultList.SetSize(max(m.width-4, 20), max(m.height-12, 5))
}

// startSync runs the engine in its own goroutine. The goroutine closes the progress channel when it returns, then
// reports the result on done.
func (m *Model) startSync() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan syncComplete, 1)

	progress, done := m.progressChan, m.done
	go func() {
		result, err := m.engine.Run(ctx, progress, m.opts)
		close(progress)
		done <- syncComplete{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			c := <-done
			return syncCompleteMsg(c.result, c.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Localize library metadata?")

	mode := "write metadata and update the ledger"
	if m.opts.DryRun {
		mode = "dry run (look up only)"
	}
	info := fmt.Sprintf("Scope: %s\nMode: %s\n", m.opts.Scope, mode)
	if m.opts.Max > 0 {
		info += fmt.Sprintf("Limit: %d tracks\n", m.opts.Max)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	var phase string
	switch m.progress.Phase {
	case tasks.LoadLedger:
		phase = "Loading ledger..."
	case tasks.LaunchApp:
		phase = "Opening the library..."
	case tasks.ListTracks:
		phase = "Reading playlists..."
	case tasks.ProcessTracks:
		phase = fmt.Sprintf("Processing tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Starting..."
	}

	title := styles.title.Render("Syncing " + m.opts.Scope.String())
	body := fmt.Sprintf("%s %s\n%s", m.spinner.View(), phase, m.progress.Message)
	if len(m.recent) > 0 {
		body += "\n\n" + styles.help.Render(strings.Join(m.recent, "\n"))
	}

	footer := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	if m.stopping {
		footer = styles.warn.Render("Stopping after the current track...")
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, body, footer)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.restart, m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Sync failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	title := styles.ok.Render("✓ Sync Complete!")
	if m.err != nil {
		title = styles.warn.Render(fmt.Sprintf("Sync stopped: %v", m.err))
	}

	summary := fmt.Sprintf("\nProcessed: %d  Skipped: %d\n%s",
		m.result.Processed(), m.result.SkippedTotal(), formatter.Summary(m.result.Run))
	if n := len(m.result.Malformed); n > 0 {
		summary += "\n" + styles.warn.Render(fmt.Sprintf("%d malformed listing lines ignored", n))
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, summary, m.resultList.View(), helpView)
}
