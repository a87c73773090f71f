package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ptpanel/ptpanel/model"
	"github.com/ptpanel/ptpanel/service"
)

// Field indexes into formModel.inputs.
const (
	fieldRole = iota
	fieldMode
	fieldAddress
	fieldKey
	fieldExtra
	fieldMemory
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Role (server/client)",
	"Mode (plain/obfuscated)",
	"Address (host:port)",
	"Key (shared secret)",
	"Extra args (space-separated)",
	"Memory limit MB (0 = none)",
}

type formModel struct {
	inputs  [fieldCount]textinput.Model
	focused int
	errMsg  string
}

// newFormModel pre-fills the form from the current config, or from the
// defaults on a fresh machine.
func newFormModel(cfg *model.TunnelConfig) *formModel {
	if cfg == nil {
		cfg = model.Default()
		cfg.InstalledAt = ""
	}
	f := &formModel{}
	values := [fieldCount]string{
		string(cfg.Role),
		cfg.Mode,
		cfg.Address,
		cfg.Key,
		strings.Join(cfg.ExtraArgs, " "),
		strconv.Itoa(cfg.MemoryMB),
	}
	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.SetValue(values[i])
		ti.CharLimit = 256
		f.inputs[i] = ti
	}
	f.inputs[fieldKey].EchoMode = textinput.EchoPassword
	f.inputs[f.focused].Focus()
	return f
}

func (f *formModel) init() tea.Cmd {
	return textinput.Blink
}

// update returns (done, cancelled, cmd). done means the operator saved
// the form; the resulting config is in config().
func (f *formModel) update(msg tea.Msg) (bool, bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, false, f.updateInputs(msg)
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c":
		return false, true, nil
	case "enter":
		if cfg := f.config(); cfg != nil {
			if err := cfg.Validate(); err != nil {
				f.errMsg = err.Error()
				return false, false, nil
			}
		}
		return true, false, nil
	case "tab", "down":
		f.moveFocus(1)
		return false, false, nil
	case "shift+tab", "up":
		f.moveFocus(-1)
		return false, false, nil
	}
	return false, false, f.updateInputs(msg)
}

func (f *formModel) moveFocus(delta int) {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + delta + fieldCount) % fieldCount
	f.inputs[f.focused].Focus()
}

func (f *formModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range f.inputs {
		var cmd tea.Cmd
		f.inputs[i], cmd = f.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// config assembles a TunnelConfig from the form fields.
func (f *formModel) config() *model.TunnelConfig {
	memory, _ := strconv.Atoi(strings.TrimSpace(f.inputs[fieldMemory].Value()))
	var extra []string
	if v := strings.TrimSpace(f.inputs[fieldExtra].Value()); v != "" {
		extra = strings.Fields(v)
	}
	return &model.TunnelConfig{
		Role:      model.Role(strings.TrimSpace(f.inputs[fieldRole].Value())),
		Mode:      strings.TrimSpace(f.inputs[fieldMode].Value()),
		Address:   strings.TrimSpace(f.inputs[fieldAddress].Value()),
		Key:       f.inputs[fieldKey].Value(),
		ExtraArgs: extra,
		MemoryMB:  memory,
	}
}

func (f *formModel) view() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTitle)).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelp))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelp))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Edit Tunnel Config"))
	b.WriteString("\n\n")
	for i := 0; i < fieldCount; i++ {
		b.WriteString(labelStyle.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(f.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(HintForm))
	return b.String()
}

// editProgram wraps the form as a standalone program for `ptpanel edit`
// without flags.
type editProgram struct {
	form      *formModel
	submitted bool
}

func (e *editProgram) Init() tea.Cmd {
	return e.form.init()
}

func (e *editProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		return e, nil
	}
	done, cancelled, cmd := e.form.update(msg)
	if cancelled {
		return e, tea.Quit
	}
	if done {
		e.submitted = true
		return e, tea.Quit
	}
	return e, cmd
}

func (e *editProgram) View() string {
	return e.form.view()
}

// RunEditForm opens the interactive config form and stages the result
// through the controller.
func RunEditForm(ctx context.Context, svc *service.LifecycleService) error {
	prog := &editProgram{form: newFormModel(svc.CurrentConfig())}
	if _, err := tea.NewProgram(prog).Run(); err != nil {
		return err
	}
	if !prog.submitted {
		return nil
	}
	return svc.Edit(ctx, prog.form.config())
}
