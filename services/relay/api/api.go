package api

import (
	"github.com/kaytu-io/assistant-relay/services/relay/api/health"
	"github.com/kaytu-io/assistant-relay/services/relay/api/thread"
	"github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/kaytu-io/assistant-relay/services/relay/poller"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type API struct {
	logger *zap.Logger
	oc     *openai.Service
	poller *poller.Poller
}

func New(logger *zap.Logger, oc *openai.Service, p *poller.Poller) *API {
	return &API{
		logger: logger.Named("api"),
		oc:     oc,
		poller: p,
	}
}

func (api *API) Register(e *echo.Echo) {
	thread.New(api.logger, api.oc, api.poller).Register(e)
	health.New(api.oc).Register(e)
}
