// Package render turns papers into printable HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"papergen/internal/domain/model"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	templates = template.Must(template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.tmpl"))

	policy = bluemonday.UGCPolicy()
)

// Options controls Document output.
type Options struct {
	ShowAnswers bool
}

type pageData struct {
	Title       string
	SchoolName  string
	Logo        template.URL
	Paper       *model.QuestionPaper
	Body        template.HTML
	ShowAnswers bool
	Answers     []string
}

// Content renders the question sections of p as an HTML fragment.
func Content(p *model.QuestionPaper) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "content", p); err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}
	return buf.String(), nil
}

// Document renders p as a standalone printable page. Stored rendered content
// is sanitised before it is embedded; papers without it are rendered from
// their sections.
func Document(p *model.QuestionPaper, opts Options) (string, error) {
	body := strings.TrimSpace(p.RenderedContent)
	if body == "" {
		var err error
		if body, err = Content(p); err != nil {
			return "", err
		}
	}

	data := pageData{
		Title:       Title(p),
		Paper:       p,
		Body:        template.HTML(policy.Sanitize(body)),
		ShowAnswers: opts.ShowAnswers,
	}
	if p.SchoolName != nil {
		data.SchoolName = *p.SchoolName
	}
	if p.SchoolLogo != nil {
		data.Logo = logoURL(*p.SchoolLogo)
	}
	if opts.ShowAnswers {
		data.Answers = answers(p)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "paper", data); err != nil {
		return "", fmt.Errorf("render paper %s: %w", p.ID, err)
	}
	return buf.String(), nil
}

// Title is the heading shown on a printed paper.
func Title(p *model.QuestionPaper) string {
	switch {
	case p.ExamName != "" && p.Subject != "":
		return p.ExamName + " - " + p.Subject
	case p.ExamName != "":
		return p.ExamName
	case p.Subject != "":
		return p.Subject
	}
	return "Question Paper"
}

// FileName is the download name for a printed paper.
func FileName(p *model.QuestionPaper) string {
	name := slug.Make(Title(p))
	if name == "" {
		name = "question-paper"
	}
	return name + ".html"
}

// logoURL accepts embedded images and web URLs; anything else is dropped.
func logoURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "data:image/"),
		strings.HasPrefix(raw, "https://"),
		strings.HasPrefix(raw, "http://"):
		return template.URL(raw)
	}
	return ""
}

func answers(p *model.QuestionPaper) []string {
	var out []string
	for _, s := range p.Sections {
		for _, q := range s.Questions {
			if q.Answer == nil {
				out = append(out, "-")
				continue
			}
			out = append(out, *q.Answer)
		}
	}
	return out
}
