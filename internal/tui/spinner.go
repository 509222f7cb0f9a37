package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Spinner represents a loading spinner
type Spinner struct {
	frames []string
	frame  int
}

// NewSpinner creates a new spinner
func NewSpinner() *Spinner {
	return &Spinner{
		frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		frame:  0,
	}
}

// Next advances the spinner to the next frame
func (s *Spinner) Next() {
	s.frame = (s.frame + 1) % len(s.frames)
}

// View returns the current spinner frame
func (s *Spinner) View() string {
	return s.frames[s.frame]
}

// TypingIndicator is shown below the message list while a reply is pending
type TypingIndicator struct {
	spinner *Spinner
	message string
}

// NewTypingIndicator creates a new typing indicator
func NewTypingIndicator(message string) *TypingIndicator {
	return &TypingIndicator{
		spinner: NewSpinner(),
		message: message,
	}
}

// Tick advances the spinner animation
func (t *TypingIndicator) Tick() {
	t.spinner.Next()
}

// View renders the indicator
func (t *TypingIndicator) View() string {
	spinnerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212"))

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true)

	return fmt.Sprintf("%s %s",
		spinnerStyle.Render(t.spinner.View()),
		messageStyle.Render(t.message))
}
