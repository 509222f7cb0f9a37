package models

// Role tags who produced a history entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one turn of the conversation history sent to the backend
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Feature represents a sidebar item
type Feature struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Panel represents a feature panel. ID is matched against feature keys.
type Panel struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"` // Static text for panels without their own widget
}

// ChatPanelID identifies the panel hosting the chat widget
const ChatPanelID = "chatContainer"
