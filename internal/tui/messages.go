package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/strrl/llmchat/internal/chat"
)

type (
	// ChatResponseMsg carries the result of one chat request
	ChatResponseMsg struct {
		Request  *chat.Request
		Response *chat.Response
		Error    error
	}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// sendCmd performs the HTTP exchange off the update loop. It only reads the
// request snapshot; state changes happen when ChatResponseMsg is handled.
func sendCmd(ctx context.Context, client *chat.Client, req *chat.Request) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Do(ctx, req)
		return ChatResponseMsg{
			Request:  req,
			Response: resp,
			Error:    err,
		}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
