package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bcosnet/wasmhost/host"
	"github.com/bcosnet/wasmhost/sim"
	"github.com/bcosnet/wasmhost/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateEditFields modelState = iota
	stateShowResult
)

type interactiveModel struct {
	opts   runOpts
	err    error
	state  modelState
	inputs []textinput.Model
	focus  int

	status  string
	result  vm.Result
	logs    []host.LogEntry
}

const (
	fieldDeploy = iota
	fieldCaller
	fieldDest
	fieldValue
	fieldInput
	fieldGas
	fieldCount
)

func newInteractiveModel(o runOpts) *interactiveModel {
	m := &interactiveModel{opts: o, inputs: make([]textinput.Model, fieldCount)}

	seed := []string{
		boolStr(o.deploy), o.caller, o.dest, o.value, o.input, fmt.Sprintf("%d", o.gas),
	}
	placeholders := []string{
		"true/false", "hex caller address", "hex destination address", "decimal value", "hex input data", "gas",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.SetValue(seed[i])
		ti.Width = 48
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	return m
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

type execResultMsg struct {
	err    error
	status string
	result vm.Result
	logs   []host.LogEntry
}

func (m *interactiveModel) fieldLabels() []string {
	return []string{"deploy", "caller", "dest", "value", "input", "gas"}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			if m.state == stateEditFields {
				m.inputs[m.focus].Blur()
				m.focus = (m.focus + 1) % len(m.inputs)
				m.inputs[m.focus].Focus()
			}

		case "enter":
			switch m.state {
			case stateEditFields:
				return m, m.runOnce
			case stateShowResult:
				m.state = stateEditFields
				m.err = nil
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateEditFields
				m.err = nil
			}
		}

	case execResultMsg:
		m.err = msg.err
		m.status = msg.status
		m.result = msg.result
		m.logs = msg.logs
		m.state = stateShowResult
	}

	if m.state == stateEditFields {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// runOnce reads the edited fields, runs one Verify+Execute pass against a
// fresh sim.Context, and reports the outcome as an execResultMsg — the same
// non-interactive path run() drives, just collected into a tea.Msg instead
// of printed directly.
func (m *interactiveModel) runOnce() tea.Msg {
	o := m.opts
	o.deploy = strings.EqualFold(m.inputs[fieldDeploy].Value(), "true")
	o.caller = m.inputs[fieldCaller].Value()
	o.dest = m.inputs[fieldDest].Value()
	o.value = m.inputs[fieldValue].Value()
	o.input = m.inputs[fieldInput].Value()
	o.gas = parseGas(m.inputs[fieldGas].Value())

	ctx := context.Background()
	code, err := os.ReadFile(o.wasmFile)
	if err != nil {
		return execResultMsg{err: err}
	}
	algo, err := parseHashAlgo(o.hashAlgo)
	if err != nil {
		return execResultMsg{err: err}
	}

	engine, err := vm.New(ctx, vm.Config{EnableDebugImports: o.debugImport})
	if err != nil {
		return execResultMsg{err: err}
	}
	defer engine.Close(ctx)

	if err := engine.Verify(ctx, code); err != nil {
		return execResultMsg{err: err}
	}

	msgIn, err := buildMessage(o)
	if err != nil {
		return execResultMsg{err: err}
	}

	hc := sim.New(algo)
	hc.WithOrigin(msgIn.Caller)

	res, err := engine.Execute(ctx, hc, code, msgIn)
	if err != nil {
		return execResultMsg{err: err}
	}
	return execResultMsg{status: entryLabel(msgIn.Kind), result: res, logs: hc.Logs()}
}

func parseGas(s string) int64 {
	var gas int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 10_000_000
		}
		gas = gas*10 + int64(c-'0')
	}
	if gas == 0 {
		return 10_000_000
	}
	return gas
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmhost"))
	b.WriteString(" ")
	b.WriteString(m.opts.wasmFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateEditFields:
		labels := m.fieldLabels()
		for i, input := range m.inputs {
			cursor := "  "
			if i == m.focus {
				cursor = "> "
			}
			b.WriteString(cursor + fieldStyle.Render(labels[i]) + ": " + input.View() + "\n")
		}
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab next field • enter run • q quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(fmt.Sprintf("Entry:        %s\n", fieldStyle.Render(m.status)))
			b.WriteString(resultStyle.Render(fmt.Sprintf("Status:       %s\n", m.result.Status)))
			b.WriteString(fmt.Sprintf("Reverted:     %v\n", m.result.IsRevert))
			b.WriteString(fmt.Sprintf("Gas left:     %d\n", m.result.GasLeft))
			b.WriteString(fmt.Sprintf("Return value: %s\n", hex.EncodeToString(m.result.ReturnValue)))
			for _, entry := range m.logs {
				b.WriteString(fmt.Sprintf("Log: topics=%d data=%s\n", len(entry.Topics), hex.EncodeToString(entry.Data)))
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter edit again • q quit"))
	}

	return b.String()
}

func runInteractive(o runOpts) error {
	p := tea.NewProgram(newInteractiveModel(o), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
