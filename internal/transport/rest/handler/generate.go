package handler

import (
	"context"
	"net/http"
)

// Generator produces a website from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, existingHTML string) (string, error)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	HTML   string `json:"html,omitempty"`
}

type generateResponse struct {
	HTML string `json:"html"`
}

type GenerateHandler struct {
	generator Generator
}

func NewGenerateHandler(generator Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	html, err := h.generator.Generate(r.Context(), req.Prompt, req.HTML)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{HTML: html})
}
