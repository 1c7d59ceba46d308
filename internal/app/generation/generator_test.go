package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModel struct {
	text   string
	err    error
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModel) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

const draftJSON = `{
  "examName": "Weekly Quiz",
  "instructions": ["Attempt all questions."],
  "sections": [
    {"title": "Objective", "questions": [
      {"text": "Speed of light?", "marks": 1, "options": ["3e8 m/s", "3e6 m/s"], "answer": "3e8 m/s"},
      {"text": "", "marks": 5}
    ]},
    {"title": "Empty", "questions": []},
    {"title": "Descriptive", "questions": [{"text": "State Newton's first law.", "marks": 4}]}
  ]
}`

func newTestGenerator(m ContentModel) *GeminiGenerator {
	return NewGeneratorWithModel(m, "test-model", logger.NewNop())
}

func TestGenerateBuildsPaper(t *testing.T) {
	school := "Hillcrest"
	m := &fakeModel{text: "```json\n" + draftJSON + "\n```"}
	req := model.GenerationRequest{ID: "r1", Kind: model.KindGenerate, Subject: "Physics", GradeLevel: "9", Topics: []string{"Optics", "Motion"}, SchoolName: &school}

	p, err := newTestGenerator(m).Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Physics", p.Subject)
	assert.Equal(t, "Weekly Quiz", p.ExamName)
	assert.Equal(t, model.SourceGenerated, p.Source)
	assert.Equal(t, &school, p.SchoolName)
	require.Len(t, p.Sections, 2, "empty sections and blank questions are dropped")
	assert.Equal(t, 5, p.TotalMarks)
	require.NotNil(t, p.Sections[0].Questions[0].Answer)
	assert.Nil(t, p.Sections[1].Questions[0].Answer)
	assert.Contains(t, p.RenderedContent, "Newton")
	assert.Empty(t, p.ID)

	assert.Contains(t, m.prompt, "Topics: Optics, Motion")
	assert.Equal(t, "application/json", m.config.ResponseMIMEType)
}

func TestGenerateAnalysis(t *testing.T) {
	m := &fakeModel{text: draftJSON}
	req := model.GenerationRequest{ID: "r1", Kind: model.KindAnalysis, Subject: "Physics", SourceText: "Q1. What is inertia?"}

	p, err := newTestGenerator(m).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.SourceAnalysis, p.Source)
	assert.Contains(t, m.prompt, "What is inertia?")

	_, err = newTestGenerator(m).Generate(context.Background(), model.GenerationRequest{Kind: model.KindAnalysis, Subject: "Physics"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateRateLimited(t *testing.T) {
	for name, apiErr := range map[string]error{
		"code":   genai.APIError{Code: 429, Message: "quota"},
		"status": genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := newTestGenerator(&fakeModel{err: apiErr}).Generate(context.Background(), model.GenerationRequest{Subject: "Math"})
			assert.ErrorIs(t, err, ErrRateLimited)
			assert.NotErrorIs(t, err, ErrGenerationFailed)
		})
	}
}

func TestGenerateFailures(t *testing.T) {
	cases := map[string]*fakeModel{
		"api error":    {err: genai.APIError{Code: 500, Message: "internal"}},
		"other error":  {err: errors.New("connection reset")},
		"not json":     {text: "Here is your paper!"},
		"no questions": {text: `{"sections": []}`},
		"empty":        {text: ""},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := newTestGenerator(m).Generate(context.Background(), model.GenerationRequest{Subject: "Math"})
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrGenerationFailed)
		})
	}
}

func TestGenerateRequiresSubject(t *testing.T) {
	_, err := newTestGenerator(&fakeModel{text: draftJSON}).Generate(context.Background(), model.GenerationRequest{})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestNewGeminiGeneratorNeedsKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", logger.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDisabledGenerator(t *testing.T) {
	_, err := Disabled().Generate(context.Background(), model.GenerationRequest{Subject: "Physics"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAnalysisSourceIsCutOnRuneBoundary(t *testing.T) {
	// Each "é" is two bytes, so the limit falls inside a rune.
	source := "x" + strings.Repeat("é", maxSourceText)
	prompt, err := buildPrompt(model.GenerationRequest{Kind: model.KindAnalysis, Subject: "French", SourceText: source})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(prompt))

	cut := prompt[strings.Index(prompt, "Source paper:\n")+len("Source paper:\n"):]
	assert.Equal(t, maxSourceText-1, len(cut))
	assert.True(t, strings.HasPrefix(source, cut))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "ab", truncateText("abcd", 2))
	assert.Equal(t, "a", truncateText("aé", 2))
	assert.Equal(t, "", truncateText("日本", 2))
}
