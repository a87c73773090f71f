package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ptpanel/ptpanel/service"
)

// UIState selects which view the panel renders.
type UIState int

const (
	StateMenu UIState = iota
	StateConfirmUninstall
	StateEditForm
)

var menuActions = []string{
	ActionInstall,
	ActionStart,
	ActionStop,
	ActionRestart,
	ActionStatus,
	ActionLogs,
	ActionEdit,
	ActionUpdate,
	ActionUninstall,
	ActionQuit,
}

// Model is the interactive panel: a menu over the same lifecycle
// controller the subcommands use.
type Model struct {
	ctx     context.Context
	svc     *service.LifecycleService
	uiState UIState

	cursor    int
	statusMsg string
	errorMsg  string
	logLines  []string

	form *formModel

	width  int
	height int
}

// actionResultMsg carries the outcome of a lifecycle action back into
// the update loop.
type actionResultMsg struct {
	msg  string
	err  error
	logs []string
}

func NewModel(ctx context.Context, svc *service.LifecycleService) *Model {
	return &Model{ctx: ctx, svc: svc}
}

// Run starts the interactive panel.
func Run(ctx context.Context, svc *service.LifecycleService) error {
	p := tea.NewProgram(NewModel(ctx, svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case actionResultMsg:
		m.statusMsg = msg.msg
		m.errorMsg = ""
		m.logLines = msg.logs
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			m.statusMsg = ""
		}
		return m, nil
	}

	switch m.uiState {
	case StateConfirmUninstall:
		return m.updateConfirm(msg)
	case StateEditForm:
		return m.updateForm(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuActions)-1 {
			m.cursor++
		}
	case "enter":
		return m.selectAction(menuActions[m.cursor])
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.uiState = StateMenu
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Uninstall(m.ctx, true); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "uninstalled"}
		})
	case "n", "N", "esc":
		m.uiState = StateMenu
		m.statusMsg = "uninstall cancelled"
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, cancelled, cmd := m.form.update(msg)
	if cancelled {
		m.uiState = StateMenu
		m.statusMsg = "edit cancelled"
		return m, nil
	}
	if done {
		cfg := m.form.config()
		m.uiState = StateMenu
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Edit(m.ctx, cfg); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "config saved; restart to apply"}
		})
	}
	return m, cmd
}

func (m *Model) selectAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case ActionQuit:
		return m, tea.Quit
	case ActionUninstall:
		m.uiState = StateConfirmUninstall
		return m, nil
	case ActionEdit:
		m.form = newFormModel(m.svc.CurrentConfig())
		m.uiState = StateEditForm
		return m, m.form.init()
	case ActionInstall:
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Install(m.ctx, ""); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "installed; service is stopped, start it when ready"}
		})
	case ActionStart:
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Start(m.ctx); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "service started"}
		})
	case ActionStop:
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Stop(m.ctx); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "service stopped"}
		})
	case ActionRestart:
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Restart(m.ctx); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "service restarted"}
		})
	case ActionStatus:
		return m, m.runAction(func() actionResultMsg {
			return actionResultMsg{msg: fmt.Sprintf("service is %s", m.svc.Status(m.ctx))}
		})
	case ActionUpdate:
		return m, m.runAction(func() actionResultMsg {
			if err := m.svc.Update(m.ctx, ""); err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{msg: "binary updated"}
		})
	case ActionLogs:
		return m, m.runAction(func() actionResultMsg {
			ch, err := m.svc.Logs(m.ctx, logViewLines, false)
			if err != nil {
				return actionResultMsg{err: err}
			}
			var lines []string
			for line := range ch {
				lines = append(lines, line)
			}
			if len(lines) == 0 {
				return actionResultMsg{msg: "no logs yet"}
			}
			return actionResultMsg{msg: "recent logs", logs: lines}
		})
	}
	return m, nil
}

func (m *Model) runAction(fn func() actionResultMsg) tea.Cmd {
	return func() tea.Msg {
		return fn()
	}
}

func (m *Model) View() string {
	switch m.uiState {
	case StateConfirmUninstall:
		return m.viewConfirm()
	case StateEditForm:
		return m.form.view()
	default:
		return m.viewMenu()
	}
}

func (m *Model) viewMenu() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTitle)).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSelectedFg)).Background(lipgloss.Color(ColorSelectedBg))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelp))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOK))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pingtunnel Panel"))
	b.WriteString("\n\n")
	for i, action := range menuActions {
		line := fmt.Sprintf("  %d) %s", i+1, action)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line[2:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.errorMsg != "" {
		b.WriteString(errStyle.Render(m.errorMsg))
		b.WriteString("\n")
	}
	if m.statusMsg != "" {
		b.WriteString(okStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}
	for _, line := range m.logLines {
		b.WriteString(helpStyle.Render("  " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(HintMenu))
	return b.String()
}

func (m *Model) viewConfirm() string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelp))
	return errStyle.Render("Uninstall removes the service, binary, config and logs.") +
		"\n\nAre you sure? (y/n)\n\n" + helpStyle.Render(HintConfirm)
}
