package errors

import (
	"errors"
	"fmt"
	"net/http"

	relayopenai "github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/kaytu-io/assistant-relay/services/relay/poller"
	"github.com/labstack/echo/v4"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrMissingThreadID = echo.NewHTTPError(http.StatusBadRequest, "Missing thread_id")
	ErrRequiresAction  = echo.NewHTTPError(http.StatusInternalServerError, "Run requires action - function calling not implemented")
	ErrTimeout         = echo.NewHTTPError(http.StatusGatewayTimeout, "Request timeout: Assistant did not respond in time")
	ErrNoResponse      = echo.NewHTTPError(http.StatusInternalServerError, "No response from assistant")
)

// ThreadCreation reports a failure to open a new conversation thread.
func ThreadCreation(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Failed to create thread: %v", err)).SetInternal(err)
}

// ToHTTPError classifies an error raised while handling a chat request.
func ToHTTPError(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var failed *poller.RunFailedError
	switch {
	case errors.As(err, &failed):
		return echo.NewHTTPError(http.StatusInternalServerError, runFailedDetail(failed)).SetInternal(err)
	case errors.Is(err, poller.ErrRequiresAction):
		return ErrRequiresAction.WithInternal(err)
	case errors.Is(err, poller.ErrTimeout):
		return ErrTimeout.WithInternal(err)
	case errors.Is(err, relayopenai.ErrNoResponse):
		return ErrNoResponse.WithInternal(err)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", upstreamMessage(err))).SetInternal(err)
}

func runFailedDetail(err *poller.RunFailedError) string {
	msg := fmt.Sprintf("Run ended with status: %s", err.Status)
	if err.Status == openai.RunStatusFailed && err.LastError != nil {
		msg += fmt.Sprintf(" - Error: %s: %s", err.LastError.Code, err.LastError.Message)
	}
	return msg
}

func upstreamMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
