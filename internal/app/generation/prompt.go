package generation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"papergen/internal/domain/model"
)

const systemInstruction = `You write school examination papers.
Reply with a single JSON object and nothing else, shaped as:
{"examName": string, "instructions": [string],
 "sections": [{"title": string, "questions": [{"text": string, "marks": number, "options": [string], "answer": string}]}]}
Use "options" only for multiple choice questions. Every question needs an answer.`

// maxSourceText bounds the analysed text sent with an analysis request.
const maxSourceText = 20000

func buildPrompt(req model.GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return "", errors.New("subject is required")
	}

	var b strings.Builder
	switch req.Kind {
	case model.KindAnalysis:
		source := strings.TrimSpace(req.SourceText)
		if source == "" {
			return "", errors.New("analysis needs source text")
		}
		source = truncateText(source, maxSourceText)
		fmt.Fprintf(&b, "Analyse the following existing %s paper and rebuild it as a structured paper with equivalent questions.\n", req.Subject)
		writeDetails(&b, req)
		b.WriteString("\nSource paper:\n")
		b.WriteString(source)
	case model.KindGenerate, "":
		fmt.Fprintf(&b, "Create a %s question paper.\n", req.Subject)
		writeDetails(&b, req)
	default:
		return "", fmt.Errorf("unknown request kind %q", req.Kind)
	}
	return b.String(), nil
}

// truncateText cuts s to at most n bytes without splitting a rune.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func writeDetails(b *strings.Builder, req model.GenerationRequest) {
	line := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(b, "%s: %s\n", label, value)
		}
	}
	line("Exam", req.ExamName)
	line("Grade", req.GradeLevel)
	line("Board", req.Board)
	line("Difficulty", req.Difficulty)
	if req.TotalMarks > 0 {
		fmt.Fprintf(b, "Total marks: %d\n", req.TotalMarks)
	}
	if req.DurationMinutes > 0 {
		fmt.Fprintf(b, "Duration: %d minutes\n", req.DurationMinutes)
	}
	line("Question types", strings.Join(req.QuestionTypes, ", "))
	line("Topics", strings.Join(req.Topics, ", "))
}
