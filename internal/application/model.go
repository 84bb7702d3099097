// Package application is the interactive terminal converter. It walks the
// user through category, source unit, target unit and value, then shows the
// result.
package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/unitconv/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

// ConvertTimeout bounds a single conversion.
var ConvertTimeout = 5 * time.Second

type stage int

const (
	stageMenu stage = iota
	stageValue
	stageResult
)

// Model is the bubbletea model for the converter menu.
type Model struct {
	service *core.Service
	root    *Menu
	menu    *Menu
	cursor  int
	stage   stage

	category string
	from     string
	to       string
	input    string

	result *core.Result
	err    error
}

// New creates a Model at the category menu.
func New(svc *core.Service) Model {
	root := buildRootMenu(svc)
	return Model{service: svc, root: root, menu: root}
}

// Run starts the menu on in/out and blocks until the user quits or ctx ends.
func Run(ctx context.Context, svc *core.Service, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(svc),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.stage {
		case stageValue:
			return m.updateValue(msg)
		case stageResult:
			return m.updateResult(msg)
		}
		return m.updateMenu(msg)

	case categoryMsg:
		m.category = string(msg)
		m.openMenu(loadFromMenu(m.service, m.category, m.menu))

	case fromMsg:
		m.from = string(msg)
		m.openMenu(loadToMenu(m.service, m.category, m.from, m.menu))

	case toMsg:
		m.to = string(msg)
		m.stage = stageValue
		m.input = ""
		m.err = nil

	case ResultMsg:
		m.result = &msg.Result
		m.err = nil
		m.stage = stageResult

	case ErrMsg:
		m.err = msg.Err
		m.stage = stageValue
	}
	return m, nil
}

func (m *Model) openMenu(menu *Menu) {
	m.menu = menu
	m.cursor = 0
	m.stage = stageMenu
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.menu.Parent != nil {
			m.openMenu(m.menu.Parent)
		}
	case "r":
		m.reset()
	case "enter", " ":
		item := m.menu.Items[m.cursor]
		if item.Submenu != nil {
			m.openMenu(item.Submenu)
			return m, nil
		}
		if item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Model) updateValue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stage = stageMenu
		m.err = nil
	case tea.KeyEnter:
		return m, m.convertCmd()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.reset()
	case "enter", "c":
		m.stage = stageValue
		m.input = ""
	case "esc":
		m.stage = stageMenu
	}
	return m, nil
}

// reset clears the selection and result and returns to the category menu.
func (m *Model) reset() {
	m.category, m.from, m.to, m.input = "", "", "", ""
	m.result = nil
	m.err = nil
	m.openMenu(m.root)
}

func (m Model) convertCmd() tea.Cmd {
	svc := m.service
	req := core.Request{
		Category: m.category,
		From:     m.from,
		To:       m.to,
		Input:    m.input,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ConvertTimeout)
		defer cancel()

		res, err := svc.Convert(ctx, req)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ResultMsg{Result: res}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Unit Converter\n\n")

	switch m.stage {
	case stageValue:
		fmt.Fprintf(&b, "%s: %s -> %s\n\n", m.category, m.from, m.to)
		fmt.Fprintf(&b, "Enter Value to Convert: %s_\n", m.input)
		if m.err != nil {
			fmt.Fprintf(&b, "\n%s\n", core.FormatUserError(m.err))
		}
		b.WriteString("\nenter: convert  esc: back  ctrl+c: quit\n")

	case stageResult:
		fmt.Fprintf(&b, "Converted Value: %s %s\n\n", m.result.Formatted, m.result.To)
		fmt.Fprintf(&b, "%s\n", m.result.Display)
		b.WriteString("\nenter: convert again  esc: back  r: reset  q: quit\n")

	default:
		fmt.Fprintf(&b, "%s\n\n", m.menu.Title)
		for i, item := range m.menu.Items {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}
			fmt.Fprintf(&b, "%s %s\n", cursor, item.Label)
		}
		if m.result != nil {
			fmt.Fprintf(&b, "\nLast: %s\n", m.result.Display)
		}
		b.WriteString("\nenter: select  esc: back  r: reset  q: quit\n")
	}
	return b.String()
}
