// Package textgen implements the TextGenerator external collaborator
// (spec §4.7, §9): an opaque HTTP-backed service that rewrites ad copy
// from a prompt plus a per-mode system prompt, behind a request deadline.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/subculture-collective/adserve/config"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
)

// Generator calls an external LLM-backed text-generation endpoint to
// rewrite a campaign's title and/or body. Timeouts are enforced per call
// (spec §5) via the request context; exceeding the deadline surfaces as
// TextGenUnavailable and never mutates campaign state.
type Generator struct {
	client            *http.Client
	endpoint          string
	timeout           time.Duration
	titleSystemPrompt string
	bodySystemPrompt  string
}

// New wires a Generator from configuration. httpClient carries any tracing
// instrumentation itself; cmd/api passes pkg/telemetry.NewHTTPClient().
func New(cfg config.TextGenConfig, httpClient *http.Client) *Generator {
	return &Generator{
		client:            httpClient,
		endpoint:          cfg.Endpoint,
		timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		titleSystemPrompt: cfg.TitleSystemPrompt,
		bodySystemPrompt:  cfg.BodySystemPrompt,
	}
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate rewrites campaign's ad_title and/or ad_text per mode, returning
// whichever fields mode asks for (the other is returned as the campaign's
// current value, so CampaignLifecycle.GenerateText can always assign both
// without a mode switch of its own).
func (g *Generator) Generate(ctx context.Context, mode models.TextGenMode, campaign *models.Campaign) (title, body string, err error) {
	title, body = campaign.AdTitle, campaign.AdText

	if mode == models.TextGenModeTitle || mode == models.TextGenModeAll {
		title, err = g.ask(ctx, campaign.AdTitle, g.titleSystemPrompt)
		if err != nil {
			return "", "", err
		}
	}
	if mode == models.TextGenModeText || mode == models.TextGenModeAll {
		body, err = g.ask(ctx, campaign.AdText, g.bodySystemPrompt)
		if err != nil {
			return "", "", err
		}
	}
	return title, body, nil
}

func (g *Generator) ask(ctx context.Context, prompt, systemPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{Prompt: prompt, SystemPrompt: systemPrompt})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUnknown, "encoding textgen request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeTextGenUnavailable, "building textgen request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeTextGenUnavailable, "calling textgen endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.TextGenUnavailable(fmt.Sprintf("textgen endpoint returned status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.CodeTextGenUnavailable, "decoding textgen response", err)
	}
	return out.Text, nil
}
