package openai

import (
	"context"
	"errors"

	"github.com/kaytu-io/assistant-relay/services/relay/config"
	"github.com/sashabaranov/go-openai"
)

// ErrNoResponse is returned when a finished run left no readable message on the thread.
var ErrNoResponse = errors.New("no response from assistant")

// Client is the subset of the go-openai client the relay talks to.
type Client interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string) (openai.MessagesList, error)
}

type Service struct {
	client      Client
	assistantID string
}

func New(cnf config.OpenAI) *Service {
	clientConfig := openai.DefaultConfig(cnf.APIKey)
	if cnf.BaseURL != "" {
		clientConfig.BaseURL = cnf.BaseURL
	}
	clientConfig.OrgID = cnf.OrgID

	return NewWithClient(openai.NewClientWithConfig(clientConfig), cnf.AssistantID)
}

func NewWithClient(client Client, assistantID string) *Service {
	return &Service{
		client:      client,
		assistantID: assistantID,
	}
}

func (s *Service) AssistantID() string {
	return s.assistantID
}

func (s *Service) Configured() bool {
	return s != nil && s.client != nil
}
