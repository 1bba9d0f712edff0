// Package chat drives tutoring conversations: it persists the thread,
// replays its history to the tutor, and stores both sides of each turn.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/plugin/ai"
	"github.com/studywithme/studywithme/plugin/ai/tutor"
	"github.com/studywithme/studywithme/plugin/markdown"
	"github.com/studywithme/studywithme/store"
)

// historyLimit caps how many prior messages are replayed to the model.
const historyLimit = 20

const previewLength = 80

// ErrConversationNotFound is returned when a conversation UID does not resolve.
var ErrConversationNotFound = errors.New("conversation not found")

// Tutor is the AI collaborator. Nil when AI is disabled.
type Tutor interface {
	Chat(ctx context.Context, req *tutor.ChatRequest) (*tutor.ChatResponse, error)
}

// Service owns conversation state. Unlike the in-memory engines, threads
// live in per-entity tables and reads go straight to the store.
type Service struct {
	store    *store.Store
	tutor    Tutor
	renderer *markdown.Renderer
}

// NewService creates a chat service. tutor may be nil when AI is disabled;
// conversation management still works, only SendMessage fails.
func NewService(st *store.Store, tut Tutor) *Service {
	return &Service{
		store:    st,
		tutor:    tut,
		renderer: markdown.NewRenderer(),
	}
}

// Enabled reports whether the AI tutor is available.
func (s *Service) Enabled() bool {
	return s.tutor != nil
}

// Conversation is the API-facing view of a thread.
type Conversation struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Depth     string `json:"depth"`
	Preview   string `json:"preview,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ChatMessage is the API-facing view of one message.
type ChatMessage struct {
	UID       string `json:"uid"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Reply is the outcome of one tutoring turn.
type Reply struct {
	Message    *ChatMessage `json:"message"`
	EthicsFlag bool         `json:"ethicsFlag"`
}

// CreateConversation starts a new thread at the given depth.
func (s *Service) CreateConversation(ctx context.Context, title string, depth tutor.DepthLevel) (*Conversation, error) {
	if title == "" {
		title = "New conversation"
	}
	if !depth.Valid() {
		depth = tutor.DepthCore
	}

	now := time.Now().Unix()
	created, err := s.store.CreateConversation(ctx, &store.Conversation{
		UID:       shortuuid.New(),
		Title:     title,
		Depth:     string(depth),
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}
	return toConversation(created, ""), nil
}

// ListConversations returns all threads, each with a preview of its last
// message.
func (s *Service) ListConversations(ctx context.Context) ([]*Conversation, error) {
	list, err := s.store.ListConversations(ctx, &store.FindConversation{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}

	conversations := make([]*Conversation, 0, len(list))
	for _, conversation := range list {
		preview := ""
		if last, err := s.lastMessage(ctx, conversation.ID); err == nil && last != nil {
			preview = markdown.PlainText(last.Content, previewLength)
		}
		conversations = append(conversations, toConversation(conversation, preview))
	}
	return conversations, nil
}

// DeleteConversation removes a thread; its messages cascade in the store.
func (s *Service) DeleteConversation(ctx context.Context, uid string) error {
	conversation, err := s.findConversation(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.store.DeleteConversation(ctx, &store.DeleteConversation{ID: conversation.ID}); err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	return nil
}

// Messages returns a thread's messages in order, with rendered HTML.
func (s *Service) Messages(ctx context.Context, uid string) ([]*ChatMessage, error) {
	conversation, err := s.findConversation(ctx, uid)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}

	messages := make([]*ChatMessage, 0, len(stored))
	for _, message := range stored {
		messages = append(messages, s.toChatMessage(message))
	}
	return messages, nil
}

// SendMessage runs one tutoring turn in a thread: the user message and the
// tutor's reply are both persisted, and the reply is returned rendered.
func (s *Service) SendMessage(ctx context.Context, uid, message string, mode tutor.TaskMode, studyContext string) (*Reply, error) {
	if s.tutor == nil {
		return nil, errors.New("AI tutor is not enabled")
	}
	if message == "" {
		return nil, errors.New("message is required")
	}
	conversation, err := s.findConversation(ctx, uid)
	if err != nil {
		return nil, err
	}

	history, err := s.history(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}

	response, err := s.tutor.Chat(ctx, &tutor.ChatRequest{
		Message: message,
		Context: studyContext,
		Depth:   tutor.DepthLevel(conversation.Depth),
		Mode:    mode,
		History: history,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if _, err := s.store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.MessageRoleUser,
		Content:        message,
		CreatedTs:      now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to persist user message")
	}
	reply, err := s.store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.MessageRoleAssistant,
		Content:        response.Text,
		CreatedTs:      now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist assistant message")
	}

	if err := s.store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversation.ID,
		UpdatedTs: &now,
	}); err != nil {
		slog.Warn("failed to bump conversation timestamp", "error", err)
	}

	return &Reply{
		Message:    s.toChatMessage(reply),
		EthicsFlag: response.EthicsFlag,
	}, nil
}

func (s *Service) findConversation(ctx context.Context, uid string) (*store.Conversation, error) {
	conversation, err := s.store.GetConversation(ctx, &store.FindConversation{UID: &uid})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find conversation")
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *Service) history(ctx context.Context, conversationID int32) ([]ai.Message, error) {
	stored, err := s.store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversationID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load history")
	}
	if len(stored) > historyLimit {
		stored = stored[len(stored)-historyLimit:]
	}

	history := make([]ai.Message, 0, len(stored))
	for _, message := range stored {
		role := "user"
		if message.Role == store.MessageRoleAssistant {
			role = "assistant"
		}
		history = append(history, ai.Message{Role: role, Content: message.Content})
	}
	return history, nil
}

func (s *Service) lastMessage(ctx context.Context, conversationID int32) (*store.Message, error) {
	messages, err := s.store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversationID})
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return messages[len(messages)-1], nil
}

func (s *Service) toChatMessage(message *store.Message) *ChatMessage {
	html := ""
	if message.Role == store.MessageRoleAssistant {
		if rendered, err := s.renderer.Render(message.Content); err == nil {
			html = rendered
		}
	}
	return &ChatMessage{
		UID:       message.UID,
		Role:      string(message.Role),
		Content:   message.Content,
		HTML:      html,
		CreatedAt: message.CreatedTs,
	}
}

func toConversation(conversation *store.Conversation, preview string) *Conversation {
	return &Conversation{
		UID:       conversation.UID,
		Title:     conversation.Title,
		Depth:     conversation.Depth,
		Preview:   preview,
		CreatedAt: conversation.CreatedTs,
		UpdatedAt: conversation.UpdatedTs,
	}
}
