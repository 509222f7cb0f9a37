package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/strrl/llmchat/internal/chat"
	"github.com/strrl/llmchat/internal/config"
	"github.com/strrl/llmchat/internal/shell"
	"github.com/strrl/llmchat/pkg/models"
	"go.uber.org/zap"
)

const (
	sidebarWidth  = 24
	headerHeight  = 2
	footerHeight  = 1
	typingHeight  = 1
	welcomeText   = "Welcome! Type a message below to start a conversation."
	typingMessage = "Assistant is typing..."
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// bubble is one rendered chat entry. Failures are shown as assistant bubbles.
type bubble struct {
	role models.Role
	text string
}

type model struct {
	ctx    context.Context
	shell  *shell.Controller
	client *chat.Client
	logger *zap.Logger

	focus          focusArea
	sidebarCursor  int
	viewport       viewport.Model
	input          textarea.Model
	inputMaxHeight int
	typing         *TypingIndicator
	ticking        bool
	bubbles        []bubble
	welcome        bool
	ready          bool
	width          int
	height         int
}

func newInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "┃ "
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.SetHeight(1)
	ta.Focus()
	return ta
}

// newModel binds navigation, selects the first feature and then starts the
// chat client once.
func newModel(ctx context.Context, cfg config.Config, client *chat.Client, logger *zap.Logger) (model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctl := shell.New(cfg.Features, cfg.Panels, cfg.NarrowWidth)
	if len(cfg.Features) > 0 {
		ctl.Select(cfg.Features[0].Key)
	}

	m := model{
		ctx:            ctx,
		shell:          ctl,
		client:         client,
		logger:         logger,
		focus:          focusInput,
		viewport:       viewport.New(80, 20),
		input:          newInput(),
		inputMaxHeight: cfg.InputMaxHeight,
		typing:         NewTypingIndicator(typingMessage),
		welcome:        true,
	}

	if client != nil {
		if err := ctl.Start(ctx, client); err != nil {
			return model{}, fmt.Errorf("failed to initialize chat: %w", err)
		}
	}

	m.viewport.SetContent(m.renderMessages())
	return m, nil
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.shell.Resize(msg.Width)
		m.ready = true
		m.layout()
		return m, nil

	case ChatResponseMsg:
		m.handleResponse(msg)
		return m, nil

	case TickMsg:
		if m.awaiting() {
			m.typing.Tick()
			return m, tickCmd()
		}
		m.ticking = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+b":
			m.shell.ToggleSidebar()
			if m.shell.SidebarOpen() {
				m.setFocus(focusSidebar)
			} else {
				m.setFocus(focusInput)
			}
			m.layout()
			return m, nil

		case "tab":
			if m.shell.SidebarOpen() && m.focus == focusInput {
				m.setFocus(focusSidebar)
			} else {
				m.setFocus(focusInput)
			}
			return m, nil
		}

		if m.focus == focusSidebar {
			m.updateSidebar(msg)
			return m, nil
		}

		if !m.chatVisible() {
			return m, nil
		}

		switch msg.String() {
		case "enter", "ctrl+s":
			cmd := m.submit()
			return m, cmd
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.autosizeInput()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) updateSidebar(msg tea.KeyMsg) {
	features := m.shell.Features()

	switch msg.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(features)-1 {
			m.sidebarCursor++
		}
	case "enter":
		if m.sidebarCursor < len(features) {
			m.shell.Select(features[m.sidebarCursor].Key)
			if !m.shell.SidebarOpen() {
				m.setFocus(focusInput)
			}
			m.layout()
		}
	case "esc":
		m.setFocus(focusInput)
	}
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// submit renders the user's message and starts the request. Whitespace-only
// input changes nothing. A submission while another is in flight is allowed.
func (m *model) submit() tea.Cmd {
	if m.client == nil {
		return nil
	}
	req, ok := m.client.Begin(m.input.Value())
	if !ok {
		return nil
	}

	m.welcome = false
	m.appendBubble(models.RoleUser, req.Message)
	m.input.Reset()
	m.input.SetHeight(1)
	m.layout()

	cmds := []tea.Cmd{sendCmd(m.ctx, m.client, req)}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *model) handleResponse(msg ChatResponseMsg) {
	out, err := m.client.Finish(m.ctx, msg.Request, msg.Response, msg.Error)
	if errors.Is(err, chat.ErrNotAwaiting) {
		m.logger.Warn("dropping response with no request in flight")
		return
	}
	m.appendBubble(models.RoleAssistant, out.Text)
}

func (m *model) appendBubble(role models.Role, text string) {
	m.bubbles = append(m.bubbles, bubble{role: role, text: text})
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m model) awaiting() bool {
	return m.client != nil && m.client.State() == chat.StateAwaitingResponse
}

func (m model) chatVisible() bool {
	return m.shell.PanelVisible(models.ChatPanelID)
}

// autosizeInput grows the input with its content up to inputMaxHeight
func (m *model) autosizeInput() {
	h := strings.Count(m.input.Value(), "\n") + 1
	if h > m.inputMaxHeight {
		h = m.inputMaxHeight
	}
	if h != m.input.Height() {
		m.input.SetHeight(h)
		m.layout()
	}
}

func (m *model) layout() {
	if !m.ready {
		return
	}

	contentWidth := m.contentWidth()
	m.input.SetWidth(contentWidth)

	viewHeight := m.height - headerHeight - footerHeight - typingHeight - m.input.Height()
	if viewHeight < 1 {
		viewHeight = 1
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = viewHeight
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m model) contentWidth() int {
	w := m.width
	if m.shell.SidebarOpen() {
		w -= sidebarWidth + 1
	}
	if w < 10 {
		w = 10
	}
	return w
}

// splitLines turns newline characters into separate rendered lines.
// Everything else in the text is kept as is.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func renderBubble(b bubble, width int) string {
	maxWidth := width * 3 / 4
	if maxWidth < 10 {
		maxWidth = 10
	}

	style := lipgloss.NewStyle().Padding(0, 1)
	align := lipgloss.Left
	if b.role == models.RoleUser {
		style = style.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63"))
		align = lipgloss.Right
	} else {
		style = style.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	}

	lines := splitLines(b.text)
	rendered := make([]string, len(lines))
	for i, line := range lines {
		lineStyle := style
		if lipgloss.Width(line)+2 > maxWidth {
			lineStyle = lineStyle.Width(maxWidth)
		}
		rendered[i] = lineStyle.Render(line)
	}

	return lipgloss.PlaceHorizontal(width, align, lipgloss.JoinVertical(align, rendered...))
}

func (m model) renderMessages() string {
	var s strings.Builder

	if m.welcome {
		welcomeStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
		s.WriteString(welcomeStyle.Render(welcomeText) + "\n")
	}

	for i, b := range m.bubbles {
		s.WriteString(renderBubble(b, m.viewport.Width))
		if i < len(m.bubbles)-1 {
			s.WriteString("\n\n")
		}
	}

	return s.String()
}

func (m model) renderSidebar() string {
	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	s.WriteString(headerStyle.Render("Features") + "\n")
	s.WriteString(strings.Repeat("─", sidebarWidth-2) + "\n\n")

	for i, f := range m.shell.Features() {
		cursor := "  "
		if m.focus == focusSidebar && i == m.sidebarCursor {
			cursor = "> "
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		marker := "  "
		if i == m.shell.Active() {
			style = style.Foreground(lipgloss.Color("212")).Bold(true)
			marker = "● "
		}

		s.WriteString(style.Render(cursor+marker+f.Label) + "\n")
	}

	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.bodyHeight()).
		Render(s.String())
}

func (m model) renderChatPanel() string {
	typing := ""
	if m.awaiting() {
		typing = m.typing.View()
	}
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), typing, m.input.View())
}

func (m model) renderPanels() string {
	visible := m.shell.VisiblePanels()
	if len(visible) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
		return emptyStyle.Render("Nothing to show for this feature")
	}

	parts := make([]string, 0, len(visible))
	for _, p := range visible {
		if p.ID == models.ChatPanelID {
			parts = append(parts, m.renderChatPanel())
			continue
		}
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
		bodyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(m.contentWidth())
		parts = append(parts, titleStyle.Render(p.Title)+"\n\n"+bodyStyle.Render(p.Body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	body := m.renderPanels()
	if m.shell.SidebarOpen() {
		dividerStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
		divider := strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n")
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), dividerStyle.Render(divider), body)
	}

	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), body, m.renderFooter())
}

func (m model) renderHeader() string {
	title := "LLM Chat"
	if t := m.shell.Title(); t != "" {
		title = fmt.Sprintf("☰ %s", t)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))

	return style.Render(title) + "\n"
}

func (m model) renderFooter() string {
	info := "ctrl+b: menu"
	if m.focus == focusSidebar {
		info += " • ↑/↓: navigate • enter: select • tab/esc: back to input"
	} else {
		info += " • enter: send • alt+enter: newline • pgup/pgdown: scroll"
		if m.shell.SidebarOpen() {
			info += " • tab: features"
		}
	}
	info += " • ctrl+c: quit"

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	return style.Render(info)
}

// Run starts the interactive client and blocks until the user quits
func Run(ctx context.Context, cfg config.Config, client *chat.Client, logger *zap.Logger) error {
	m, err := newModel(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return err
}
