// Package repl implements the interactive session of the larf command.
package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/larf/lang"
	"github.com/ardnew/larf/log"
)

// editDoneMsg is sent when the session source was edited and parses.
type editDoneMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for another reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List declared names and functions
  tree     Print the token tree of the last input
  edit     Edit the session source in $EDITOR and rerun it
  reset    Discard all declarations
  clear    Clear screen
  quit     Exit

Usage:
  Type statements to run them; declarations persist between inputs
  Press Tab / Shift-Tab to cycle through completions
  Press Esc to toggle between eval and command modes
  Use Up/Down for history, Shift+Up/Shift+Down within the current mode
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	suggestionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle    = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("4"))
)

// Config holds what a session needs.
type Config struct {
	// Processor runs every input.
	Processor *lang.Processor
	// Builtins, when set, returns host values preloaded into each new scope.
	// Output written to w is shown after the input that produced it.
	Builtins func(w io.Writer) map[string]any
	// Prelude, when set, is run before the first prompt.
	Prelude io.Reader
	// CacheDir holds the history file. Empty disables persistence.
	CacheDir string
	Logger   log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	proc         *lang.Processor
	scope        *lang.Scope
	builtins     func(w io.Writer) map[string]any
	out          *bytes.Buffer
	logger       log.Logger
	history      *History
	session      []string      // inputs that ran without error
	lastTree     string        // token tree of the last parsed input
	matches      fuzzy.Matches // current fuzzy match results
	historyIdx   int
	wordStart    int // byte offset of current word start
	wordEnd      int // byte offset of current word end
	suggIdx      int // selected candidate index
	preTabCursor int
	width        int
	mode         inputMode
	evalCursor   int
	ctrlCursor   int
	preTabText   string
	evalText     string
	ctrlText     string
	tabActive    bool
	quitting     bool
}

// Run starts an interactive session.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.Bool("has_prelude", cfg.Prelude != nil),
	)

	var histPath string
	if cfg.CacheDir != "" {
		histPath = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(histPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m, err := newModel(ctx, cfg, history)
	if err != nil {
		return err
	}

	if cfg.Prelude != nil {
		source, err := lang.ReadSource(cfg.Prelude)
		if err != nil {
			return err
		}

		if err := m.runSource(source); err != nil {
			return err
		}
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl ready",
		slog.Int("history", history.Len()),
		slog.Int("names", len(m.scope.Names())),
	)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) (model, error) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		proc:       cfg.Processor,
		builtins:   cfg.Builtins,
		out:        new(bytes.Buffer),
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}

	err := m.reset()

	return m, err
}

// reset replaces the scope with a new one holding only the builtins.
func (m *model) reset() error {
	m.scope = m.proc.NewScope()
	m.session = nil

	if m.builtins == nil {
		return nil
	}

	return m.scope.Preload(m.builtins(m.out))
}

// runSource runs source as the whole session, for the prelude and after an
// edit. Output of builtins is discarded.
func (m *model) runSource(source string) error {
	res, err := m.proc.Run(m.ctxFunc(), source, m.scope)
	m.out.Reset()

	if err != nil {
		return err
	}

	if e := res.Err(); e != nil {
		return e
	}

	m.session = append(m.session, source)

	return nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		if err := m.reset(); err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		if err := m.runSource(msg.source); err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("names", len(m.scope.Names())),
		)

		return m, tea.Println(resultStyle.Render("session source replaced"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	fn, inCall := detectCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render("Type a statement or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case len(m.matches) > 0:
		b.WriteString(m.renderCandidateBar())

	case inCall && m.mode == modeEval:
		b.WriteString(signatures(m.scope, fn))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches()

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1, false), nil

	case tea.KeyDown:
		return m.historyMove(1, false), nil

	case tea.KeyShiftUp:
		return m.historyMove(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyMove(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	if msg.Type == tea.KeyRunes && m.tabActive && msg.String() == " " {
		m.tabActive = false
	}

	if msg.Type != tea.KeyRunes {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves the selected completion by step and writes it into the input.
// A single candidate is completed at once.
func (m model) cycle(step int) model {
	switch len(m.matches) {
	case 0:
		return m

	case 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1
		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with s and moves the cursor after it.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refreshMatches recomputes completions unless tab-cycling is active.
func (m *model) refreshMatches() {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	// A word already equal to its sole candidate needs no bar.
	if len(m.matches) == 1 && m.matches[0].Str == m.input.Value()[m.wordStart:m.wordEnd] {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	return m.evaluate(input)
}

// evaluate runs input in the session scope and prints what it produced.
func (m model) evaluate(input string) (model, tea.Cmd) {
	ctx := m.ctxFunc()

	m.logger.TraceContext(ctx, "repl eval", slog.String("input", input))

	cmds := []tea.Cmd{tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))}

	if tree, err := m.proc.Parse(ctx, input); err == nil {
		m.lastTree = tree.String()
	}

	res, err := m.proc.Run(ctx, input, m.scope)

	if printed := strings.TrimRight(m.out.String(), "\n"); printed != "" {
		cmds = append(cmds, tea.Println(printed))
	}

	m.out.Reset()

	switch e := res.Err(); {
	case err != nil:
		cmds = append(cmds, tea.Println(errorStyle.Render(err.Error())))

	case e != nil:
		cmds = append(cmds, tea.Println(errorStyle.Render(
			fmt.Sprintf("uncaught %s at %s", e, e.Pos))))

	default:
		m.session = append(m.session, input)

		if !res.Value.IsNull() {
			cmds = append(cmds, tea.Println(resultStyle.Render(res.Value.String())))
		}
	}

	return m, tea.Sequence(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", parts[0]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listNames()))

	case "t", "tree":
		return m, tea.Sequence(echo, tea.Println(m.lastTree))

	case "r", "reset":
		if err := m.reset(); err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("scope reset")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		proc:    m.proc,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		source:  strings.Join(m.session, "\n") + "\n",
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.ok:
			return editCancelledMsg{}
		default:
			return editDoneMsg{source: cmd.edited}
		}
	})
}

// listNames renders every visible name: functions with their parameters,
// other bindings with their value.
func (m model) listNames() string {
	var b strings.Builder

	for _, name := range m.scope.Names() {
		if arities := m.scope.Arities(name); len(arities) > 0 {
			for _, a := range arities {
				if fn, err := m.scope.LookupFunction(name, a); err == nil {
					fmt.Fprintf(&b, "  %s\n", fn)
				}
			}

			continue
		}

		if bind, err := m.scope.Lookup(name); err == nil {
			fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(bind.Value)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// preview shortens the text of v to one line.
func preview(v lang.Value) string {
	s := strings.ReplaceAll(v.String(), "\n", " ")
	if len(s) > 40 {
		s = s[:37] + "..."
	}

	return "= " + s
}

// historyMove steps through history by step. Within a mode it skips entries
// of the other mode; otherwise it switches mode to match the entry.
func (m model) historyMove(step int, inMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (inMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refreshMatches()

		return m
	}

	if step > 0 {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches()
	}

	return m
}

// switchToMode switches to mode, keeping the pending input of each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches()

	return m
}
