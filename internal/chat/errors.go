package chat

import "fmt"

const (
	// unknownErrorText stands in when the backend gives no error text
	unknownErrorText = "unknown error"

	failurePrefix = "Sorry, something went wrong. Please check the backend logs.\nError: "
)

// APIError is a non-2xx answer from the chat endpoint
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Server error: %d. %s", e.StatusCode, e.Message)
}

// FailureText is the assistant bubble shown when an exchange fails
func FailureText(err error) string {
	return failurePrefix + err.Error()
}
