package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/apperr"
	"github.com/glassroot/glassroot/internal/settings"
)

// ErrBusy is returned when a reply is already streaming in the session.
var ErrBusy = errors.New("a reply is already streaming")

// Streamer opens a completions event stream. *Client implements it.
type Streamer interface {
	Stream(ctx context.Context, req CompletionRequest) (io.ReadCloser, error)
}

// Result describes the assistant reply produced by Send or Retry.
type Result struct {
	MessageID string
	Content   string
	Aborted   bool
}

// Session runs one conversation against the completions API. At most one reply
// streams at a time.
type Session struct {
	conv         *Conversation
	client       Streamer
	settings     settings.Repository
	defaultModel string
	logger       *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets a logger for stream diagnostics.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithDefaultModel sets the model used when settings name none.
func WithDefaultModel(model string) SessionOption {
	return func(s *Session) { s.defaultModel = model }
}

// NewSession creates a session over conv.
func NewSession(conv *Conversation, client Streamer, repo settings.Repository, opts ...SessionOption) *Session {
	s := &Session{
		conv:     conv,
		client:   client,
		settings: repo,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Conversation returns the session's message sequence.
func (s *Session) Conversation() *Conversation {
	return s.conv
}

// Busy reports whether a reply is streaming.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Abort cancels the reply in flight, if any. The interrupted Send or Retry returns
// a Result with Aborted set and no error.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Send appends a user message and streams the assistant reply into the conversation.
// Nothing is appended when settings are incomplete or another reply is streaming.
func (s *Session) Send(ctx context.Context, content string) (*Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content", "must not be empty")
	}
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	prefs, model, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	user := s.conv.Append(RoleUser, content)
	return s.reply(ctx, prefs, model, user.ID)
}

// Retry resubmits user message id, discarding every message after it.
func (s *Session) Retry(ctx context.Context, id string) (*Result, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	msg, ok := s.conv.Get(id)
	if !ok || msg.Role != RoleUser {
		return nil, &apperr.NotFoundError{Resource: "user message", ID: id}
	}
	prefs, model, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	s.conv.TruncateAfter(id)
	s.conv.ClearStatus(id)
	return s.reply(ctx, prefs, model, id)
}

// RetryLast resubmits the most recent user message.
func (s *Session) RetryLast(ctx context.Context) (*Result, error) {
	msg, ok := s.conv.LastUser()
	if !ok {
		return nil, apperr.Validation("", "nothing to retry")
	}
	return s.Retry(ctx, msg.ID)
}

// Reset clears the conversation. It fails with ErrBusy while a reply is streaming.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrBusy
	}
	s.conv.Clear()
	return nil
}

func (s *Session) begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return ctx, func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}, nil
}

func (s *Session) loadSettings() (settings.Settings, string, error) {
	prefs, err := s.settings.Load()
	if err != nil {
		return prefs, "", err
	}
	if prefs.APIKey == "" {
		return prefs, "", apperr.Validation("api_key", "Please configure your OpenRouter API key in settings.")
	}
	model := prefs.Model
	if model == "" {
		model = s.defaultModel
	}
	if model == "" {
		return prefs, "", apperr.Validation("model", "no model selected")
	}
	return prefs, model, nil
}

// history builds the request messages from the conversation, prepending the
// configured system prompt when the history has none.
func (s *Session) history(systemPrompt string) []WireMessage {
	var out []WireMessage
	hasSystem := false
	for _, m := range s.conv.Messages() {
		if !m.Sendable() {
			continue
		}
		if m.Role == RoleSystem {
			hasSystem = true
		}
		out = append(out, WireMessage{Role: m.Role, Content: m.Content})
	}
	if systemPrompt != "" && !hasSystem {
		out = append([]WireMessage{{Role: RoleSystem, Content: systemPrompt}}, out...)
	}
	return out
}

func (s *Session) reply(ctx context.Context, prefs settings.Settings, model, userID string) (*Result, error) {
	req := CompletionRequest{
		APIKey:   prefs.APIKey,
		Model:    model,
		Messages: s.history(prefs.SystemPrompt),
	}
	if prefs.Temperature > 0 {
		t := prefs.Temperature
		req.Temperature = &t
	}

	placeholder := s.conv.Append(RoleAssistant, "")
	body, err := s.client.Stream(ctx, req)
	if err != nil {
		return s.fail(ctx, placeholder.ID, userID, "", err)
	}
	defer body.Close()

	a := &Assembler{
		Logger: s.logger,
		OnText: func(text string) { s.conv.SetContent(placeholder.ID, text) },
	}
	text, err := a.Read(ctx, body)
	if err != nil {
		return s.fail(ctx, placeholder.ID, userID, text, err)
	}
	return &Result{MessageID: placeholder.ID, Content: text}, nil
}

// fail settles the conversation after an interrupted reply. An abort keeps any partial
// text and is not an error; any other failure removes the placeholder and marks the
// user message as failed.
func (s *Session) fail(ctx context.Context, placeholderID, userID, partial string, err error) (*Result, error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		if partial == "" {
			s.conv.Remove(placeholderID)
		}
		s.logger.Debug("reply aborted", zap.Int("partial_len", len(partial)))
		return &Result{MessageID: placeholderID, Content: partial, Aborted: true}, nil
	}
	s.conv.Remove(placeholderID)
	s.conv.MarkFailed(userID)
	s.logger.Debug("reply failed", zap.Error(err))
	return nil, apperr.Upstream(DependencyName, err)
}
