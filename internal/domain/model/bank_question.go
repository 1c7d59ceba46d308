package model

import "time"

type QuestionType string

const (
	QuestionTypeMCQ   QuestionType = "mcq"
	QuestionTypeShort QuestionType = "short"
	QuestionTypeLong  QuestionType = "long"
)

// BankQuestion is a standalone reusable question.
type BankQuestion struct {
	ID         string       `json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	Subject    string       `json:"subject"`
	Topic      string       `json:"topic"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Options    []string     `json:"options"`
	Answer     string       `json:"answer"`
	Marks      int          `json:"marks"`
	Difficulty string       `json:"difficulty"`
}

// BankQuestionFields carries everything except the assigned identity.
type BankQuestionFields struct {
	Subject    string       `json:"subject"`
	Topic      string       `json:"topic"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Options    []string     `json:"options"`
	Answer     string       `json:"answer"`
	Marks      int          `json:"marks"`
	Difficulty string       `json:"difficulty"`
}
