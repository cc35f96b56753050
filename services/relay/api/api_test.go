package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kaytu-io/assistant-relay/pkg/httpserver"
	"github.com/kaytu-io/assistant-relay/services/relay/api/entity"
	relayopenai "github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/kaytu-io/assistant-relay/services/relay/openai/openaitest"
	"github.com/kaytu-io/assistant-relay/services/relay/poller"
	"github.com/labstack/echo/v4"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HttpHandlerSuite struct {
	suite.Suite

	client *openaitest.Client
	router *echo.Echo
}

func (s *HttpHandlerSuite) SetupTest() {
	s.client = &openaitest.Client{ThreadID: "thread_abc", RunID: "run_abc"}

	logger := zap.NewNop()
	oc := relayopenai.NewWithClient(s.client, "asst_abc")
	p := poller.New(logger, oc, poller.WithInterval(time.Millisecond), poller.WithMaxAttempts(5))

	s.router = httpserver.Register(logger, New(logger, oc, p))
}

func (s *HttpHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HttpHandlerSuite) detail(rec *httptest.ResponseRecorder) string {
	var resp struct {
		Detail string `json:"detail"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Detail
}

func (s *HttpHandlerSuite) TestStart() {
	require := s.Require()

	rec := s.do(http.MethodGet, "/start", nil)
	require.Equal(http.StatusOK, rec.Code)

	var resp entity.StartResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal("thread_abc", resp.ThreadID)
	require.Equal(1, s.client.CreateThreadCalls)
}

func (s *HttpHandlerSuite) TestStartFailure() {
	s.client.CreateThreadErr = errors.New("invalid api key")

	rec := s.do(http.MethodGet, "/start", nil)

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Equal("Failed to create thread: invalid api key", s.detail(rec))
}

func (s *HttpHandlerSuite) TestChat() {
	require := s.Require()
	s.client.Statuses = []openai.RunStatus{openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCompleted}
	s.client.Replies = []openai.Message{openaitest.TextReply("Ciao!")}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_abc", Message: "hello"})
	require.Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp entity.ChatResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal("Ciao!", resp.Response)

	require.Equal(1, s.client.CreateMessageCalls)
	require.Equal(1, s.client.CreateRunCalls)
	require.Equal(3, s.client.RetrieveRunCalls)
	require.Equal(1, s.client.ListMessageCalls)
	require.Equal("asst_abc", s.client.AssistantID)
}

func (s *HttpHandlerSuite) TestChatMissingThreadID() {
	require := s.Require()

	rec := s.do(http.MethodPost, "/chat", map[string]string{"message": "hello"})

	require.Equal(http.StatusBadRequest, rec.Code)
	require.Equal("Missing thread_id", s.detail(rec))
	require.Zero(s.client.CreateMessageCalls)
	require.Zero(s.client.CreateRunCalls)
	require.Zero(s.client.RetrieveRunCalls)
}

func (s *HttpHandlerSuite) TestChatMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Require().Zero(s.client.CreateMessageCalls)
}

func (s *HttpHandlerSuite) TestChatRunFailed() {
	require := s.Require()
	s.client.Statuses = []openai.RunStatus{openai.RunStatusFailed}
	s.client.LastError = &openai.RunLastError{Code: "server_error", Message: "model overloaded"}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_abc", Message: "hello"})

	require.Equal(http.StatusInternalServerError, rec.Code)
	require.Equal("Run ended with status: failed - Error: server_error: model overloaded", s.detail(rec))
	require.Equal(1, s.client.RetrieveRunCalls)
	require.Zero(s.client.ListMessageCalls)
}

func (s *HttpHandlerSuite) TestChatRequiresAction() {
	s.client.Statuses = []openai.RunStatus{openai.RunStatusInProgress, openai.RunStatusRequiresAction}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_abc", Message: "hello"})

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Equal("Run requires action - function calling not implemented", s.detail(rec))
}

func (s *HttpHandlerSuite) TestChatTimeout() {
	require := s.Require()
	s.client.Statuses = []openai.RunStatus{openai.RunStatusInProgress}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_abc", Message: "hello"})

	require.Equal(http.StatusGatewayTimeout, rec.Code)
	require.Equal("Request timeout: Assistant did not respond in time", s.detail(rec))
	require.Equal(5, s.client.RetrieveRunCalls)
	require.Zero(s.client.ListMessageCalls)
}

func (s *HttpHandlerSuite) TestChatEmptyReply() {
	s.client.Statuses = []openai.RunStatus{openai.RunStatusCompleted}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_abc", Message: "hello"})

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Equal("No response from assistant", s.detail(rec))
}

func (s *HttpHandlerSuite) TestChatUpstreamError() {
	s.client.CreateMessageErr = &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "No thread found"}

	rec := s.do(http.MethodPost, "/chat", entity.ChatRequest{ThreadID: "thread_missing", Message: "hello"})

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Equal("Internal server error: No thread found", s.detail(rec))
	s.Require().Zero(s.client.CreateRunCalls)
}

func (s *HttpHandlerSuite) TestHealth() {
	require := s.Require()

	rec := s.do(http.MethodGet, "/health", nil)
	require.Equal(http.StatusOK, rec.Code)

	var resp entity.HealthResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(entity.HealthResponse{Status: "healthy", OpenAIConfigured: true, AssistantConfigured: true}, resp)
}

func (s *HttpHandlerSuite) TestMetrics() {
	rec := s.do(http.MethodGet, "/metrics", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func TestHttpHandlerSuite(t *testing.T) {
	suite.Run(t, &HttpHandlerSuite{})
}
