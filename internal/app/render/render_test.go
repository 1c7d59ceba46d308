package render

import (
	"strings"
	"testing"
	"time"

	"papergen/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func samplePaper() *model.QuestionPaper {
	return &model.QuestionPaper{
		ID:              "p1",
		Subject:         "Chemistry",
		ExamName:        "Mid Term",
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SchoolName:      strPtr("Riverside School"),
		GradeLevel:      "10",
		TotalMarks:      10,
		DurationMinutes: 30,
		Instructions:    []string{"All questions are compulsory."},
		Sections: []model.Section{{
			Title: "Section A",
			Questions: []model.Question{
				{Text: "Symbol of sodium?", Marks: 1, Options: []string{"Na", "So"}, Answer: strPtr("Na")},
				{Text: "Define a mole.", Marks: 3},
			},
		}},
	}
}

func TestContentRendersSections(t *testing.T) {
	out, err := Content(samplePaper())
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Section A</h2>")
	assert.Contains(t, out, "Symbol of sodium?")
	assert.Contains(t, out, "<li>Na</li>")
	assert.Contains(t, out, "[3]")
}

func TestContentEscapesText(t *testing.T) {
	p := samplePaper()
	p.Sections[0].Questions[0].Text = "<script>alert(1)</script>"
	out, err := Content(p)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestDocumentSanitisesStoredContent(t *testing.T) {
	p := samplePaper()
	p.RenderedContent = `<p onclick="x()">Q1</p><script>steal()</script>`

	out, err := Document(p, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Q1</p>")
	assert.NotContains(t, out, "steal()")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "Riverside School")
	assert.Contains(t, out, "Mid Term - Chemistry")
	assert.NotContains(t, out, "Answer Key")
}

func TestDocumentAnswers(t *testing.T) {
	out, err := Document(samplePaper(), Options{ShowAnswers: true})
	require.NoError(t, err)
	assert.Contains(t, out, "Answer Key")
	assert.Equal(t, 1, strings.Count(out, "<li>-</li>"))
}

func TestDocumentLogo(t *testing.T) {
	p := samplePaper()
	p.SchoolLogo = strPtr("data:image/png;base64,iVBORw0KGgo=")
	out, err := Document(p, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `src="data:image/png;base64,iVBORw0KGgo="`)

	p.SchoolLogo = strPtr("javascript:alert(1)")
	out, err = Document(p, Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript:")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "mid-term-chemistry.html", FileName(samplePaper()))
	assert.Equal(t, "question-paper.html", FileName(&model.QuestionPaper{}))
}
