package entity

type StartResponse struct {
	ThreadID string `json:"thread_id"`
}

type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message" validate:"max=256000"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type HealthResponse struct {
	Status              string `json:"status"`
	OpenAIConfigured    bool   `json:"openai_configured"`
	AssistantConfigured bool   `json:"assistant_configured"`
}
