package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

func (s *Service) NewThread(ctx context.Context) (openai.Thread, error) {
	return s.client.CreateThread(ctx, openai.ThreadRequest{})
}

func (s *Service) SendMessage(ctx context.Context, threadID, content string) (openai.Message, error) {
	return s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
}

func (s *Service) RunThread(ctx context.Context, threadID string) (openai.Run, error) {
	return s.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: s.assistantID,
	})
}

func (s *Service) RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	return s.client.RetrieveRun(ctx, threadID, runID)
}

// LatestReply returns the text of the most recent message on the thread.
func (s *Service) LatestReply(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"

	msgs, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil)
	if err != nil {
		return "", err
	}

	if len(msgs.Messages) == 0 {
		return "", ErrNoResponse
	}

	for _, content := range msgs.Messages[0].Content {
		if content.Text != nil {
			return content.Text.Value, nil
		}
	}
	return "", ErrNoResponse
}
