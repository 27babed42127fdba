package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/resilience"
	"github.com/RaygunnerZA/property-task-pro-sub003/pkg/anthropic"
)

const extractSystemPrompt = `You extract entity mentions from property-management task descriptions.
Entity types: space, person, team, asset, category, property.
Respond with a JSON array only, no prose. Each element:
{"entity_type": "<type>", "label": "<mention as written>", "raw_value": "<id if the text references a known id, else omit>"}
Do not invent mentions that are not in the text. Do not invent ids.`

// ModelExtractor extracts candidates with a Claude call. Calls are
// guarded by a rate limiter shared across the process.
type ModelExtractor struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewModelExtractor builds a model-backed extractor. requestsPerSecond
// bounds outbound calls; zero or negative disables limiting.
func NewModelExtractor(client anthropic.Client, modelID string, requestsPerSecond float64) *ModelExtractor {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &ModelExtractor{
		client:  client,
		model:   modelID,
		limiter: limiter,
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Extract sends the description to the model and parses validated
// candidates out of its JSON reply.
func (e *ModelExtractor) Extract(ctx context.Context, description string) ([]model.CandidateReference, error) {
	if strings.TrimSpace(description) == "" {
		return nil, eris.New("extract: empty description")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "extract: rate limit wait")
		}
	}

	req := anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: 1024,
		System:    extractSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: description},
		},
	}

	retry := e.retry
	retry.OnRetry = func(attempt int, err error) {
		zap.L().Warn("extract: retrying model call",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: model call")
	}
	resp.Usage.Log(e.model, "extract")

	candidates, err := parseCandidates(resp.Text())
	if err != nil {
		return nil, err
	}
	return sanitize(candidates), nil
}

// parseCandidates decodes the model's JSON array, tolerating markdown
// fences around it.
func parseCandidates(text string) ([]model.CandidateReference, error) {
	payload := stripFences(text)
	if payload == "" {
		return nil, eris.New("extract: empty model response")
	}

	var raw []struct {
		EntityType string `json:"entity_type"`
		Label      string `json:"label"`
		RawValue   string `json:"raw_value"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse model response")
	}

	out := make([]model.CandidateReference, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.CandidateReference{
			EntityType: model.EntityType(r.EntityType),
			Label:      r.Label,
			RawValue:   r.RawValue,
		})
	}
	return out, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
