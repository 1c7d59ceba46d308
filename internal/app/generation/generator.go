// Package generation produces question papers from structured requests
// through the Gemini API.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"papergen/internal/app/render"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"google.golang.org/genai"
)

var (
	// ErrRateLimited means the backend asked us to slow down. It is not a
	// failure; the request is retried after a delay.
	ErrRateLimited = errors.New("generation rate limited")
	// ErrGenerationFailed wraps every other generation error.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("generation backend not configured")
)

const (
	// FailureMessage is shown to the user when a generation fails.
	FailureMessage = "We couldn't generate your paper. Please try again."
	// RateLimitMessage is shown when retries are exhausted.
	RateLimitMessage = "The generator is busy right now. Please try again in a few minutes."
)

// Generator turns a request into a paper.
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (*model.QuestionPaper, error)
}

// ContentModel is the part of the genai client used here.
type ContentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	models ContentModel
	model  string
	log    *logger.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, log *logger.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewGeneratorWithModel(client.Models, modelName, log), nil
}

// NewGeneratorWithModel builds a generator over an existing content model.
func NewGeneratorWithModel(models ContentModel, modelName string, log *logger.Logger) *GeminiGenerator {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GeminiGenerator{models: models, model: modelName, log: log}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req model.GenerationRequest) (*model.QuestionPaper, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		if isRateLimit(err) {
			g.log.Warn("generation rate limited", "request_id", req.ID, "model", g.model)
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	paper, err := parseDraft(text, req)
	if err != nil {
		g.log.Warn("generation returned an unusable draft", "request_id", req.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return paper, nil
}

func isRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}

// draft is the JSON document the model is asked to return.
type draft struct {
	ExamName     string   `json:"examName"`
	Instructions []string `json:"instructions"`
	Sections     []struct {
		Title     string `json:"title"`
		Questions []struct {
			Text    string   `json:"text"`
			Marks   int      `json:"marks"`
			Options []string `json:"options"`
			Answer  string   `json:"answer"`
		} `json:"questions"`
	} `json:"sections"`
}

// parseDraft converts the model output into a paper. The paper has no id or
// timestamp yet.
func parseDraft(text string, req model.GenerationRequest) (*model.QuestionPaper, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, errors.New("empty response")
	}
	var d draft
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}

	p := &model.QuestionPaper{
		Subject:         req.Subject,
		SchoolName:      req.SchoolName,
		ExamName:        req.ExamName,
		GradeLevel:      req.GradeLevel,
		Board:           req.Board,
		TotalMarks:      req.TotalMarks,
		DurationMinutes: req.DurationMinutes,
		Difficulty:      req.Difficulty,
		Instructions:    d.Instructions,
		Source:          model.SourceGenerated,
	}
	if req.Kind == model.KindAnalysis {
		p.Source = model.SourceAnalysis
	}
	if p.ExamName == "" {
		p.ExamName = d.ExamName
	}

	marks := 0
	for _, s := range d.Sections {
		section := model.Section{Title: s.Title}
		for _, q := range s.Questions {
			if strings.TrimSpace(q.Text) == "" {
				continue
			}
			question := model.Question{Text: q.Text, Marks: q.Marks, Options: q.Options}
			if q.Answer != "" {
				answer := q.Answer
				question.Answer = &answer
			}
			marks += q.Marks
			section.Questions = append(section.Questions, question)
		}
		if len(section.Questions) > 0 {
			p.Sections = append(p.Sections, section)
		}
	}
	if len(p.Sections) == 0 {
		return nil, errors.New("draft has no questions")
	}
	if p.TotalMarks == 0 {
		p.TotalMarks = marks
	}

	content, err := render.Content(p)
	if err != nil {
		return nil, err
	}
	p.RenderedContent = content
	return p, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// disabledGenerator stands in when no API key is configured. Every request
// fails with ErrNotConfigured so the session reports an ordinary failure.
type disabledGenerator struct{}

// Disabled returns a Generator that always fails with ErrNotConfigured.
func Disabled() Generator { return disabledGenerator{} }

func (disabledGenerator) Generate(context.Context, model.GenerationRequest) (*model.QuestionPaper, error) {
	return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, ErrNotConfigured)
}
