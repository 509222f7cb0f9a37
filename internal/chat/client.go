// Package chat owns the session identifier and conversation history and
// runs the request/response cycle against the remote chat API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/strrl/llmchat/internal/config"
	"github.com/strrl/llmchat/internal/storage"
	"github.com/strrl/llmchat/pkg/models"
	"go.uber.org/zap"
)

const chatPath = "/chat"

// Request is the JSON body posted to the chat endpoint. It is a snapshot
// taken when the message is submitted and is never mutated afterwards.
type Request struct {
	Message             string         `json:"message"`
	SessionID           *string        `json:"session_id"`
	ConversationHistory []models.Entry `json:"conversation_history"`
}

// Response is the success body of the chat endpoint
type Response struct {
	SessionID string `json:"session_id,omitempty"`
	Response  string `json:"response"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Outcome is what the UI renders once an exchange completes
type Outcome struct {
	Text       string // assistant reply or failure bubble text
	Err        error
	NewSession bool // the response started a session
}

// Client is the chat client. Begin and Finish mutate state; Do only reads
// its Request and may run on any goroutine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	logger     *zap.Logger

	mu        sync.Mutex
	sessionID string
	history   *History
	inFlight  int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a client from configuration
func NewClient(cfg config.Config, store storage.Store, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: http.DefaultClient,
		store:      store,
		logger:     logger,
		history:    NewHistory(cfg.HistoryLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init restores a previously stored session identifier
func (c *Client) Init(ctx context.Context) error {
	id, ok, err := c.store.GetItem(ctx, storage.SessionKey)
	if err != nil {
		return fmt.Errorf("chat: restore session: %w", err)
	}

	c.mu.Lock()
	if ok {
		c.sessionID = id
	}
	c.mu.Unlock()

	c.logger.Info("chat module initialized", zap.String("session_id", id))
	return nil
}

// Begin validates input and snapshots the request. Whitespace-only input
// returns false and changes nothing. A request already in flight does not
// block another one.
func (c *Client) Begin(input string) (*Request, bool) {
	message := strings.TrimSpace(input)
	if message == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req := &Request{
		Message:             message,
		ConversationHistory: c.history.Entries(),
	}
	if c.sessionID != "" {
		id := c.sessionID
		req.SessionID = &id
	}
	c.inFlight++
	return req, true
}

// Do performs a single POST to the chat endpoint. There is no retry.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("chat: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chat: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: unknownErrorText}
		var eb errorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return nil, apiErr
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("chat: decode response: %w", err)
	}
	return &out, nil
}

// Finish applies the result of Do. On success the session id is adopted if
// none is held yet and both turns are appended to history. On failure
// history is left untouched.
func (c *Client) Finish(ctx context.Context, req *Request, resp *Response, err error) (Outcome, error) {
	c.mu.Lock()
	if c.inFlight == 0 {
		c.mu.Unlock()
		return Outcome{}, ErrNotAwaiting
	}
	c.inFlight--

	if err == nil && resp == nil {
		err = fmt.Errorf("chat: empty response")
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("fetch error", zap.Error(err))
		return Outcome{Text: FailureText(err), Err: err}, nil
	}

	var out Outcome
	if c.sessionID == "" && resp.SessionID != "" {
		c.sessionID = resp.SessionID
		out.NewSession = true
	}
	c.history.Append(
		models.Entry{Role: models.RoleUser, Content: req.Message},
		models.Entry{Role: models.RoleAssistant, Content: resp.Response},
	)
	out.Text = resp.Response
	sessionID := c.sessionID
	c.mu.Unlock()

	if out.NewSession {
		c.logger.Info("new session started", zap.String("session_id", sessionID))
		if err := c.store.SetItem(ctx, storage.SessionKey, sessionID); err != nil {
			c.logger.Warn("failed to persist session id", zap.Error(err))
		}
	}
	return out, nil
}

// SendMessage runs a whole exchange synchronously. It returns false for
// whitespace-only input.
func (c *Client) SendMessage(ctx context.Context, input string) (Outcome, bool) {
	req, ok := c.Begin(input)
	if !ok {
		return Outcome{}, false
	}
	resp, err := c.Do(ctx, req)
	out, ferr := c.Finish(ctx, req, resp, err)
	if ferr != nil {
		return Outcome{Text: FailureText(ferr), Err: ferr}, true
	}
	return out, true
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) History() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight > 0 {
		return StateAwaitingResponse
	}
	return StateIdle
}
