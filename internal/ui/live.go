package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hasanasadov/hasscreen/internal/session"
)

// Actions are the controls the live view exposes on the keyboard.
// Handlers run off the UI loop; nil handlers disable the key.
type Actions struct {
	TogglePause func()
	Stop        func()
	Resume      func()
	Leave       func()
}

// SessionUI renders the live session state inline in the terminal and
// forwards key presses to the session actions.
type SessionUI struct {
	program    *tea.Program
	model      *liveSessionModel
	updateChan chan session.Snapshot
	wg         sync.WaitGroup
}

// liveSessionModel is an internal model for live session updates
type liveSessionModel struct {
	snap       session.Snapshot
	actions    Actions
	spinner    spinner.Model
	startTime  time.Time
	updateChan chan session.Snapshot
	mu         sync.RWMutex
	quitting   bool
}

// NewSessionUI creates a live session view starting from the given
// snapshot. Push new snapshots through Push; they arrive from the
// session controller's observer callback.
func NewSessionUI(snap session.Snapshot, actions Actions) *SessionUI {
	updateChan := make(chan session.Snapshot, 16)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	model := &liveSessionModel{
		snap:       snap,
		actions:    actions,
		spinner:    s,
		updateChan: updateChan,
		startTime:  time.Now(),
	}

	return &SessionUI{
		model:      model,
		updateChan: updateChan,
	}
}

// Start starts the UI in a goroutine
func (ui *SessionUI) Start() {
	ui.wg.Add(1)
	go func() {
		defer ui.wg.Done()
		// Inline mode without alt screen keeps previous terminal
		// output visible
		ui.program = tea.NewProgram(ui.model)
		if _, err := ui.program.Run(); err != nil {
			fmt.Printf("UI error: %v\n", err)
		}
	}()
}

// Push feeds a fresh snapshot into the view. Never blocks; if the UI
// lags, intermediate snapshots are dropped.
func (ui *SessionUI) Push(snap session.Snapshot) {
	select {
	case ui.updateChan <- snap:
	default:
	}
}

// Wait blocks until the UI exits, usually because the user quit.
func (ui *SessionUI) Wait() {
	ui.wg.Wait()
}

// Stop stops the UI and waits for the render loop to exit.
func (ui *SessionUI) Stop() {
	if ui.program != nil {
		ui.program.Quit()
	}
	ui.wg.Wait()
}

// Elapsed returns how long the view has been running.
func (ui *SessionUI) Elapsed() time.Duration {
	return time.Since(ui.model.startTime)
}

// Model methods
func (m *liveSessionModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenForUpdates(),
	)
}

func (m *liveSessionModel) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updateChan
	}
}

func (m *liveSessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.actions.Leave != nil {
				go m.actions.Leave()
			}
			return m, tea.Quit
		case "p":
			if m.actions.TogglePause != nil {
				go m.actions.TogglePause()
			}
		case "s":
			if m.actions.Stop != nil {
				go m.actions.Stop()
			}
		case "r":
			if m.actions.Resume != nil {
				go m.actions.Resume()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case session.Snapshot:
		m.mu.Lock()
		m.snap = msg
		m.mu.Unlock()
		cmds = append(cmds, m.listenForUpdates())
	}

	return m, tea.Batch(cmds...)
}

func (m *liveSessionModel) View() string {
	if m.quitting {
		return ""
	}

	m.mu.RLock()
	snap := m.snap
	m.mu.RUnlock()

	var b strings.Builder

	roleIcon := IconScreen
	roleText := "Presenting"
	if snap.Role == session.RoleViewer {
		roleIcon = IconEye
		roleText = "Viewing"
	}

	b.WriteString(fmt.Sprintf("\n%s %s %s %s\n\n",
		roleIcon, roleText,
		MutedStyle.Render("room"),
		BoldStyle.Foreground(Primary).Render(snap.Room),
	))

	if snap.ShowLoading() {
		b.WriteString(fmt.Sprintf("%s ", m.spinner.View()))
	}
	b.WriteString(StatusBadge(snap.Status, snap.Tint()))
	b.WriteString("\n\n")

	switch {
	case snap.Paused:
		b.WriteString(fmt.Sprintf("%s Sharing paused, the last frame stays on the viewer's side\n", IconPause))
	case snap.ShowStoppedOverlay:
		b.WriteString(fmt.Sprintf("%s The presenter has stopped sharing\n", IconStop))
	case snap.HasRemote:
		b.WriteString(fmt.Sprintf("%s Receiving the presenter's screen\n", IconPeer))
	}

	if snap.Role == session.RoleViewer && !snap.LastHeartbeat.IsZero() {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("last heartbeat %s ago\n",
			time.Since(snap.LastHeartbeat).Round(time.Second))))
	}

	b.WriteString("\n" + MutedStyle.Render(m.helpLine(snap)))

	return b.String()
}

func (m *liveSessionModel) helpLine(snap session.Snapshot) string {
	if snap.Role != session.RolePresenter {
		return "Press q to leave"
	}
	if snap.Stopped {
		return "Press r to resume, q to leave"
	}
	return "Press p to pause, s to stop, q to leave"
}
