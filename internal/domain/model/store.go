package model

// Store is the whole persisted document. Every list is owned by exactly one
// user id.
type Store struct {
	UserSettings   map[string]Settings        `json:"userSettings"`
	Papers         map[string][]QuestionPaper `json:"papers"`
	AttendedPapers map[string][]QuestionPaper `json:"attendedPapers"`
	QuestionBank   map[string][]BankQuestion  `json:"questionBank"`
}

func NewStore() *Store {
	return &Store{
		UserSettings:   map[string]Settings{},
		Papers:         map[string][]QuestionPaper{},
		AttendedPapers: map[string][]QuestionPaper{},
		QuestionBank:   map[string][]BankQuestion{},
	}
}

// Normalize fills maps that were absent from a parsed document.
func (s *Store) Normalize() {
	if s.UserSettings == nil {
		s.UserSettings = map[string]Settings{}
	}
	if s.Papers == nil {
		s.Papers = map[string][]QuestionPaper{}
	}
	if s.AttendedPapers == nil {
		s.AttendedPapers = map[string][]QuestionPaper{}
	}
	if s.QuestionBank == nil {
		s.QuestionBank = map[string][]BankQuestion{}
	}
}
