package health

import (
	"net/http"

	"github.com/kaytu-io/assistant-relay/services/relay/api/entity"
	"github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/labstack/echo/v4"
)

type API struct {
	oc *openai.Service
}

func New(oc *openai.Service) API {
	return API{oc: oc}
}

func (s API) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, entity.HealthResponse{
		Status:              "healthy",
		OpenAIConfigured:    s.oc.Configured(),
		AssistantConfigured: s.oc != nil && s.oc.AssistantID() != "",
	})
}

func (s API) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
}
