// Package openai wraps the classification and embedding collaborators.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"

	"github.com/cenkalti/backoff/v4"
	gopenai "github.com/sashabaranov/go-openai"
)

const classifierSystemPrompt = `You are an expert recruiting assistant for a job application tracking system. Analyze the raw email (subject + body) provided by the user and decide whether it describes a stage of a job-application lifecycle.

Be very careful. If you have ANY doubt that the email is job-application related (newsletters, personal mail, marketing, spam, social media, general career content), respond EXACTLY with:
{"status": "None of These"}

Otherwise respond with ONLY a valid, minified JSON object conforming to this schema:

{
  "company_name": <string>,          proper-case company, e.g. "Cisco"
  "role": <string>,                  job title, e.g. "Software Engineer Intern"
  "date": <string>,                  relevant date of the event, ISO-8601 YYYY-MM-DD
  "status": <string>,                one of: "applied", "interview", "rejected", "offer"
  "interview_round": <string|null>,  only when status is "interview", e.g. "OA", "Behavioral", "Round 1", "Final Round"
  "location": <string|null>,         city/state/country or "Remote" when clearly stated
  "job_id": <string|null>,           requisition or job id when present
  "salary_comp": <string|null>,      only for offers, compensation text when stated
  "deadline_to_accept": <string|null> only for offers, ISO-8601 accept-by date when stated
}

Strict rules:
1. "applied" = application confirmations; "interview" = interview/assessment invitations, scheduling or feedback; "rejected" = denials; "offer" = offer letters.
2. Extract entities from BOTH subject and body. Prefer explicit company names; never invent one. If the sender domain is clearly corporate (e.g. @oracle.com) you may use the organization part ("Oracle").
3. If a value is not available, output null for that field.
4. Output a single JSON object, no markdown fences, no prose, no extra keys.`

// Service implements both the Classifier and Embedder ports against the
// OpenAI API.
type Service struct {
	client         *gopenai.Client
	model          string
	embeddingModel string
}

func NewService(apiKey, model, embeddingModel string) *Service {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if embeddingModel == "" {
		embeddingModel = string(gopenai.SmallEmbedding3)
	}
	return &Service{
		client:         gopenai.NewClient(apiKey),
		model:          model,
		embeddingModel: embeddingModel,
	}
}

// Classify runs the extraction prompt over an email and returns the typed
// event, or (nil, nil) when the email is not job related. The classifier
// never fabricates a company name; on any doubt it returns not-job-related.
func (s *Service) Classify(ctx context.Context, text string) (*domain.EmailEvent, error) {
	var content string
	operation := func() error {
		resp, err := s.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: 0.1,
			Messages: []gopenai.ChatCompletionMessage{
				{Role: gopenai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
				{Role: gopenai.ChatMessageRoleUser, Content: text},
			},
			ResponseFormat: &gopenai.ChatCompletionResponseFormat{
				Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("classification returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	return parseClassification(content)
}

// Embed returns the embedding vector for text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	operation := func() error {
		resp, err := s.client.CreateEmbeddings(ctx, gopenai.EmbeddingRequest{
			Model: gopenai.EmbeddingModel(s.embeddingModel),
			Input: []string{text},
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return backoff.Permanent(fmt.Errorf("embedding returned no data"))
		}
		vector = resp.Data[0].Embedding
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return vector, nil
}

func parseClassification(content string) (*domain.EmailEvent, error) {
	// Models occasionally wrap JSON in prose despite the response
	// format hint.
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first < 0 || last <= first {
		return nil, fmt.Errorf("classifier output contains no JSON object")
	}
	jsonStr := content[first : last+1]

	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &probe); err != nil {
		return nil, fmt.Errorf("unparseable classifier output: %w", err)
	}
	if probe.Status == "" || probe.Status == "None of These" {
		return nil, nil
	}

	var event domain.EmailEvent
	if err := json.Unmarshal([]byte(jsonStr), &event); err != nil {
		return nil, fmt.Errorf("unparseable classifier output: %w", err)
	}
	return &event, nil
}

func retryPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 1 * time.Second
	policy.RandomizationFactor = 0.1
	policy.Multiplier = 2
	return backoff.WithContext(backoff.WithMaxRetries(policy, 4), ctx)
}
