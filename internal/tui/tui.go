package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/controller"
	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/staging"
)

const defaultToastDuration = 3 * time.Second

type inputMode int

const (
	modeChat inputMode = iota
	modePath
)

type Options struct {
	ToastDuration time.Duration
	Logger        *zap.Logger
}

// message types

type sessionEventMsg struct {
	ev session.Event
}

type submitDoneMsg struct {
	err error
}

type sendDoneMsg struct {
	err error
}

type stagedMsg struct {
	files []staging.StagedFile
	err   error
}

type toastExpiredMsg struct {
	seq int
}

// model

type model struct {
	ctx      context.Context
	sess     *session.ClientSession
	indexer  *controller.Indexer
	chatter  *controller.Chatter
	log      *zap.Logger
	toastDur time.Duration

	mode       inputMode
	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	cursor     int
	listOffset int
	pending    int // chat turns in flight
	toast      string
	toastSeq   int
	width      int
	height     int
	ready      bool
	quitting   bool
}

func newModel(ctx context.Context, sess *session.ClientSession, ix *controller.Indexer, ch *controller.Chatter, opts Options) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if opts.ToastDuration <= 0 {
		opts.ToastDuration = defaultToastDuration
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := model{
		ctx:        ctx,
		sess:       sess,
		indexer:    ix,
		chatter:    ch,
		log:        opts.Logger,
		toastDur:   opts.ToastDuration,
		input:      ti,
		transcript: newViewport(0, 0),
		spinner:    sp,
	}
	m.setMode(modeChat)
	return m
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, sess *session.ClientSession, ix *controller.Indexer, ch *controller.Chatter, opts Options) error {
	m := newModel(ctx, sess, ix, ch, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	pump := newEventPump(p.Send)
	unsubscribe := sess.Subscribe(pump.push)
	go pump.run()
	defer func() {
		unsubscribe()
		pump.stop()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m *model) setMode(mode inputMode) {
	m.mode = mode
	m.input.Reset()
	switch mode {
	case modePath:
		m.input.Prompt = "add> "
		m.input.Placeholder = "Files or folders, space separated..."
		m.input.PromptStyle = stylePathPrompt
	default:
		m.input.Prompt = "> "
		m.input.Placeholder = "Ask about your documents..."
		m.input.PromptStyle = styleInputPrompt
	}
	m.input.TextStyle = styleInput
}

func (m *model) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.toastDur, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *model) clampCursor() {
	n := m.sess.Staging().Count
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustListScroll(m.stagedListHeight(m.panelHeight()))
}

// Init starts the cursor blink and the spinner.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = m.width - len(m.input.Prompt) - 2
		m.transcript = newViewport(m.transcriptWidth(), m.panelHeight())
		m.refreshTranscript()
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionEventMsg:
		switch msg.ev.Kind {
		case session.EventNotice:
			return m, m.showToast(msg.ev.Notice)
		case session.EventMessageAppended, session.EventThinkingStarted, session.EventThinkingFinished:
			m.refreshTranscript()
		case session.EventStagingChanged:
			m.clampCursor()
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case submitDoneMsg:
		// outcome notices arrive as session events
		if errors.Is(msg.err, controller.ErrBusy) {
			return m, m.showToast("Upload already in progress")
		}
		return m, nil

	case sendDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.refreshTranscript()
		return m, nil

	case stagedMsg:
		if msg.err != nil {
			m.log.Warn("stage paths", zap.Error(msg.err))
			return m, m.showToast(msg.err.Error())
		}
		if len(msg.files) == 0 {
			return m, m.showToast("No files found")
		}
		m.sess.Stage(msg.files...)
		return m, m.showToast(fmt.Sprintf("Staged %d file(s)", len(msg.files)))

	case tea.KeyMsg:
		if msg.Paste && m.mode == modeChat {
			if paths, ok := looksLikePaths(string(msg.Runes)); ok {
				return m, stagePathsCmd(paths)
			}
		}

		switch {
		case key.Matches(msg, keys.Quit):
			if m.mode == modePath && msg.String() == "esc" {
				m.setMode(modeChat)
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.AddPath):
			if m.mode == modePath {
				m.setMode(modeChat)
			} else {
				m.setMode(modePath)
			}
			return m, nil

		case key.Matches(msg, keys.Enter):
			return m.handleEnter()

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.stagedListHeight(m.panelHeight()))
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < m.sess.Staging().Count-1 {
				m.cursor++
				m.adjustListScroll(m.stagedListHeight(m.panelHeight()))
			}
			return m, nil

		case key.Matches(msg, keys.Remove):
			// a number typed in the input picks the entry, otherwise the cursor does
			if raw := strings.TrimSpace(m.input.Value()); raw != "" && m.mode == modeChat {
				if !m.sess.UnstageString(raw) {
					return m, m.showToast("No staged file #" + raw)
				}
				m.input.Reset()
			} else {
				m.sess.Unstage(m.cursor)
			}
			m.clampCursor()
			return m, nil

		case key.Matches(msg, keys.Clear):
			m.sess.ClearStaging()
			m.cursor = 0
			m.listOffset = 0
			return m, nil

		case key.Matches(msg, keys.Submit):
			if m.indexer.InFlight() {
				return m, nil
			}
			return m, m.submitCmd()

		case key.Matches(msg, keys.CopyID):
			id := m.sess.SessionID()
			if id == "" {
				return m, m.showToast("No session to copy")
			}
			if err := clipboard.WriteAll(id); err != nil {
				return m, m.showToast("Session id: " + id)
			}
			return m, m.showToast("Copied session id")

		case key.Matches(msg, keys.PageUp):
			m.transcript.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.transcript.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.input, tiCmd = m.input.Update(msg)
		cmds = append(cmds, tiCmd)
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var vpCmd tea.Cmd
			m.transcript, vpCmd = m.transcript.Update(msg)
			cmds = append(cmds, vpCmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	if m.mode == modePath {
		paths := splitPaths(value)
		m.setMode(modeChat)
		if len(paths) == 0 {
			return m, nil
		}
		return m, stagePathsCmd(paths)
	}

	if strings.TrimSpace(value) == "" || m.pending > 0 {
		return m, nil
	}
	// without a session the question stays in the input for after the upload
	if m.sess.SessionID() != "" {
		m.input.Reset()
	}
	m.pending++
	return m, m.sendCmd(value)
}

func (m model) submitCmd() tea.Cmd {
	ctx, ix := m.ctx, m.indexer
	return func() tea.Msg {
		_, err := ix.SubmitCorpus(ctx)
		return submitDoneMsg{err: err}
	}
}

func (m model) sendCmd(text string) tea.Cmd {
	ctx, ch := m.ctx, m.chatter
	return func() tea.Msg {
		_, err := ch.SendMessage(ctx, text)
		return sendDoneMsg{err: err}
	}
}

func stagePathsCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		files, err := staging.FromPaths(paths...)
		return stagedMsg{files: files, err: err}
	}
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	sideW := m.sidebarWidth()
	transcriptW := m.transcriptWidth()
	panelH := m.panelHeight()

	sidePanel := stylePanelBorder.
		Width(sideW).
		Height(panelH).
		Render(m.renderSidebar(sideW, panelH))

	m.transcript.Width = transcriptW
	m.transcript.Height = panelH
	transcriptPanel := styleActiveBorder.
		Width(transcriptW).
		Height(panelH).
		Render(m.transcript.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, sidePanel, transcriptPanel)

	return lipgloss.JoinVertical(lipgloss.Left, panels, m.statusBar(), m.input.View())
}

// helper methods

func (m model) sidebarWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for the sidebar, minus border padding
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) transcriptWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for the transcript, minus border padding
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	if m.toast != "" {
		return styleToast.Render(m.toast)
	}
	var parts []string
	if m.pending > 0 {
		parts = append(parts, m.spinner.View()+"thinking")
	}
	if m.mode == modePath {
		parts = append(parts, "Enter stage", "Esc cancel")
	} else {
		parts = append(parts, "Enter send", "C-o add", "C-u upload", "C-x unstage", "C-l clear", "C-y copy id", "Esc quit")
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
