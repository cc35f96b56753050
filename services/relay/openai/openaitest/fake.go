// Package openaitest provides an in-memory stand-in for the go-openai client.
package openaitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// Client replays Statuses, one per RetrieveRun call. Once the script is
// exhausted the last status is repeated.
type Client struct {
	mu sync.Mutex

	ThreadID  string
	RunID     string
	Statuses  []openai.RunStatus
	LastError *openai.RunLastError
	Replies   []openai.Message

	CreateThreadErr  error
	CreateMessageErr error
	CreateRunErr     error
	RetrieveRunErr   error
	ListMessageErr   error

	CreateThreadCalls  int
	CreateMessageCalls int
	CreateRunCalls     int
	RetrieveRunCalls   int
	ListMessageCalls   int

	Messages    []openai.MessageRequest
	AssistantID string
}

func (c *Client) CreateThread(_ context.Context, _ openai.ThreadRequest) (openai.Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CreateThreadCalls++
	if c.CreateThreadErr != nil {
		return openai.Thread{}, c.CreateThreadErr
	}
	return openai.Thread{ID: c.ThreadID}, nil
}

func (c *Client) CreateMessage(_ context.Context, threadID string, request openai.MessageRequest) (openai.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CreateMessageCalls++
	if c.CreateMessageErr != nil {
		return openai.Message{}, c.CreateMessageErr
	}
	c.Messages = append(c.Messages, request)
	return openai.Message{ID: fmt.Sprintf("msg_%d", c.CreateMessageCalls), ThreadID: threadID, Role: request.Role}, nil
}

func (c *Client) CreateRun(_ context.Context, threadID string, request openai.RunRequest) (openai.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CreateRunCalls++
	if c.CreateRunErr != nil {
		return openai.Run{}, c.CreateRunErr
	}
	c.AssistantID = request.AssistantID
	return openai.Run{ID: c.RunID, ThreadID: threadID, AssistantID: request.AssistantID, Status: openai.RunStatusQueued}, nil
}

func (c *Client) RetrieveRun(_ context.Context, threadID, runID string) (openai.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.RetrieveRunCalls++
	if c.RetrieveRunErr != nil {
		return openai.Run{}, c.RetrieveRunErr
	}

	status := openai.RunStatusQueued
	if len(c.Statuses) > 0 {
		idx := c.RetrieveRunCalls - 1
		if idx >= len(c.Statuses) {
			idx = len(c.Statuses) - 1
		}
		status = c.Statuses[idx]
	}

	run := openai.Run{ID: runID, ThreadID: threadID, Status: status}
	if status == openai.RunStatusFailed {
		run.LastError = c.LastError
	}
	return run, nil
}

func (c *Client) ListMessage(_ context.Context, _ string, _ *int, _ *string, _ *string, _ *string) (openai.MessagesList, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ListMessageCalls++
	if c.ListMessageErr != nil {
		return openai.MessagesList{}, c.ListMessageErr
	}
	return openai.MessagesList{Messages: c.Replies}, nil
}

// TextReply builds an assistant message with a single text content part.
func TextReply(text string) openai.Message {
	return openai.Message{
		Role: openai.ChatMessageRoleAssistant,
		Content: []openai.MessageContent{
			{Type: "text", Text: &openai.MessageText{Value: text}},
		},
	}
}
