package thread

import (
	"context"
	"net/http"

	"github.com/kaytu-io/assistant-relay/services/relay/api/entity"
	relayerrors "github.com/kaytu-io/assistant-relay/services/relay/errors"
	"github.com/kaytu-io/assistant-relay/services/relay/metrics"
	"github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/kaytu-io/assistant-relay/services/relay/poller"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const previewLength = 100

type API struct {
	tracer trace.Tracer
	logger *zap.Logger
	oc     *openai.Service
	poller *poller.Poller
}

func New(logger *zap.Logger, oc *openai.Service, p *poller.Poller) API {
	return API{
		tracer: otel.GetTracerProvider().Tracer("assistant-relay.http.thread"),
		logger: logger.Named("thread"),
		oc:     oc,
		poller: p,
	}
}

// Start creates a new conversation thread.
func (s API) Start(c echo.Context) error {
	ctx, span := s.tracer.Start(c.Request().Context(), "start")
	defer span.End()

	th, err := s.oc.NewThread(ctx)
	if err != nil {
		s.logger.Error("failed to create thread", zap.Error(err))
		metrics.ThreadsCount.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return relayerrors.ThreadCreation(err)
	}
	metrics.ThreadsCount.WithLabelValues("ok").Inc()

	s.logger.Info("new thread created", zap.String("thread_id", th.ID))
	return c.JSON(http.StatusOK, entity.StartResponse{ThreadID: th.ID})
}

// Chat appends the user's message to the thread, runs the assistant and waits for its reply.
func (s API) Chat(c echo.Context) error {
	var req entity.ChatRequest
	if err := c.Bind(&req); err != nil {
		return relayerrors.ToHTTPError(err)
	}

	if req.ThreadID == "" {
		return relayerrors.ErrMissingThreadID
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// a client hanging up doesn't abandon the run
	ctx := context.WithoutCancel(c.Request().Context())
	ctx, span := s.tracer.Start(ctx, "chat", trace.WithAttributes(attribute.String("thread_id", req.ThreadID)))
	defer span.End()

	logger := s.logger.With(zap.String("thread_id", req.ThreadID))
	logger.Info("processing message", zap.Int("length", len(req.Message)))

	reply, err := s.chat(ctx, logger, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return relayerrors.ToHTTPError(err)
	}

	logger.Info("assistant response", zap.String("preview", preview(reply)))
	return c.JSON(http.StatusOK, entity.ChatResponse{Response: reply})
}

func (s API) chat(ctx context.Context, logger *zap.Logger, req entity.ChatRequest) (string, error) {
	if _, err := s.oc.SendMessage(ctx, req.ThreadID, req.Message); err != nil {
		logger.Error("failed to send message", zap.Error(err))
		return "", err
	}

	run, err := s.oc.RunThread(ctx, req.ThreadID)
	if err != nil {
		logger.Error("failed to create run", zap.Error(err))
		return "", err
	}

	if _, err := s.poller.Wait(ctx, req.ThreadID, run.ID); err != nil {
		return "", err
	}

	reply, err := s.oc.LatestReply(ctx, req.ThreadID)
	if err != nil {
		logger.Error("failed to read reply", zap.String("run_id", run.ID), zap.Error(err))
		return "", err
	}
	return reply, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

func (s API) Register(e *echo.Echo) {
	e.GET("/start", s.Start)
	e.POST("/chat", s.Chat)
}
