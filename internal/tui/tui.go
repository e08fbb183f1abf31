package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/narrate"
)

const playAgainHint = "Type 'new' to play again or 'quit' to exit."

// TUIModel is the Bubble Tea model for a local match against the bot
type TUIModel struct {
	controller *game.Controller
	state      game.MatchState
	logger     *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	quitting    bool
	interrupted bool
	focusedPane int // 0 = log, 1 = input
	matches     int

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewTUIModel creates a TUI for matches played through controller
func NewTUIModel(controller *game.Controller, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(controller, logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option. In
// test mode log entries are also captured unstyled.
func NewTUIModelWithOptions(controller *game.Controller, logger *log.Logger, testMode bool) *TUIModel {
	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "rock, paper, scissors or bomb"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		controller:  controller,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1,
		testMode:    testMode,
		capturedLog: []string{},
	}
	m.addEntry(PlainStyle, narrate.Rules)
	m.startMatch()
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updated dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.interrupted = true
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if cmd := m.Submit(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit handles one line of player input. It returns tea.Quit when the
// player asks to leave.
func (m *TUIModel) Submit(input string) tea.Cmd {
	command := strings.ToLower(strings.TrimSpace(input))

	switch command {
	case "":
		m.addEntry(WarningStyle, narrate.EmptyInputPrompt)
		return nil
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Quit
	case "help", "rules", "?":
		m.addEntry(InfoStyle, narrate.Rules)
		return nil
	case "history":
		m.addEntry(InfoStyle, narrate.History(m.state))
		return nil
	case "new", "again":
		m.startMatch()
		return nil
	}

	m.addEntry(ActionsStyle, "> "+strings.TrimSpace(input))
	next, result := m.controller.PlayTurn(m.state, input)
	m.state = next

	switch result.Status {
	case game.TurnRejected:
		m.addEntry(ErrorStyle, narrate.Turn(result, next))
	case game.TurnMatchOver:
		m.addEntry(InfoStyle, narrate.GameOver(next))
		m.addEntry(InfoStyle, playAgainHint)
	case game.TurnResolved:
		m.addEntry(RoundStyle, fmt.Sprintf("Round %d/%d", result.Round, game.MaxRounds))
		m.addEntry(PlainStyle, fmt.Sprintf("You: %s | Bot: %s", result.PlayerAction, result.OpponentAction))
		m.addEntry(outcomeStyle(result.Outcome), result.Explanation)
		m.addEntry(PlainStyle, narrate.Score(result.PlayerScore, result.OpponentScore))
		if result.MatchOver {
			m.addEntry(outcomeStyle(next.FinalResult), narrate.GameOver(next))
			m.addEntry(InfoStyle, playAgainHint)
		}
	}
	return nil
}

func (m *TUIModel) startMatch() {
	m.state = game.NewMatch()
	m.matches++
	m.addEntry(HeaderStyle, fmt.Sprintf(" Match #%d ", m.matches))
	m.logger.Debug("Match started", "match", m.matches)
}

func outcomeStyle(o game.Outcome) lipgloss.Style {
	switch o {
	case game.PlayerWin:
		return SuccessStyle
	case game.OpponentWin:
		return ErrorStyle
	default:
		return WarningStyle
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left)
	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the match status
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	round := m.state.RoundCount + 1
	if m.state.IsOver {
		round = m.state.RoundCount
	}
	content.WriteString(RoundStyle.Render(fmt.Sprintf("Round %d/%d", round, game.MaxRounds)))
	content.WriteString("\n\n")
	content.WriteString(narrate.Score(m.state.PlayerScore, m.state.OpponentScore))
	content.WriteString("\n\n")
	content.WriteString("Your bomb: " + renderBomb(m.state.PlayerOverrideUsed))
	content.WriteString("\n")
	content.WriteString("Bot bomb:  " + renderBomb(m.state.OpponentOverrideUsed))
	content.WriteString("\n")

	if m.state.IsOver {
		content.WriteString("\n")
		content.WriteString(outcomeStyle(m.state.FinalResult).Render(narrate.ResultLine(m.state.FinalResult)))
		content.WriteString("\n")
	}
	return content.String()
}

func renderBomb(used bool) string {
	if used {
		return InfoStyle.Render("used")
	}
	return BombStyle.Render("ready")
}

// renderActionPane renders the input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.state.IsOver {
		m.actionInput.Placeholder = "new, history or quit"
	} else {
		m.actionInput.Placeholder = "rock, paper, scissors or bomb"
	}
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to play • help, history, new, quit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

// addEntry appends styled text to the log, one entry per line of text
func (m *TUIModel) addEntry(style lipgloss.Style, text string) {
	for _, line := range strings.Split(text, "\n") {
		m.gameLog = append(m.gameLog, style.Render(line))
		if m.testMode {
			m.capturedLog = append(m.capturedLog, line)
		}
	}
	if m.testMode {
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// State returns the current match state
func (m *TUIModel) State() game.MatchState {
	return m.state
}

// Interrupted reports whether the session ended with Ctrl+C or Esc
func (m *TUIModel) Interrupted() bool {
	return m.interrupted
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// Run drives the model in the alternate screen until the player quits.
func Run(model *TUIModel, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
