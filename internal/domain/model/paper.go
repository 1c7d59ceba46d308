package model

import (
	"time"
)

type PaperSource string

const (
	SourceGenerated PaperSource = "generated"
	SourceAnalysis  PaperSource = "analysis"
	SourceShared    PaperSource = "shared"
	SourceManual    PaperSource = "manual"
)

// QuestionPaper is a generated or edited exam document. Optional strings are
// pointers so that absence survives a JSON round trip.
type QuestionPaper struct {
	ID              string      `json:"id"`
	Subject         string      `json:"subject"`
	CreatedAt       time.Time   `json:"createdAt"`
	SchoolName      *string     `json:"schoolName,omitempty"`
	SchoolLogo      *string     `json:"schoolLogo,omitempty"`
	RenderedContent string      `json:"renderedContent"`
	ExamName        string      `json:"examName"`
	GradeLevel      string      `json:"gradeLevel"`
	Board           string      `json:"board"`
	TotalMarks      int         `json:"totalMarks"`
	DurationMinutes int         `json:"durationMinutes"`
	Difficulty      string      `json:"difficulty"`
	Instructions    []string    `json:"instructions"`
	Sections        []Section   `json:"sections"`
	Source          PaperSource `json:"source"`
}

type Section struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	Text    string   `json:"text"`
	Marks   int      `json:"marks"`
	Options []string `json:"options"`
	Answer  *string  `json:"answer,omitempty"`
}

type GenerationKind string

const (
	KindGenerate GenerationKind = "generate"
	KindAnalysis GenerationKind = "analysis"
)

// GenerationRequest is the structured input sent to the text-generation API.
type GenerationRequest struct {
	ID              string         `json:"id"`
	Kind            GenerationKind `json:"kind"`
	Subject         string         `json:"subject"`
	ExamName        string         `json:"examName"`
	GradeLevel      string         `json:"gradeLevel"`
	Board           string         `json:"board"`
	TotalMarks      int            `json:"totalMarks"`
	DurationMinutes int            `json:"durationMinutes"`
	Difficulty      string         `json:"difficulty"`
	QuestionTypes   []string       `json:"questionTypes"`
	Topics          []string       `json:"topics"`
	SourceText      string         `json:"sourceText,omitempty"` // analysis only
	SchoolName      *string        `json:"schoolName,omitempty"`
}
