package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"papergen/internal/common"
	"papergen/internal/domain/model"
)

// BankService manages the acting user's question bank.
type BankService struct {
	lib *Library
}

func NewBankService(lib *Library) *BankService {
	return &BankService{lib: lib}
}

// SaveBankQuestion assigns an id and timestamp to fields and appends the
// result. Without an identity it returns nil and stores nothing.
func (s *BankService) SaveBankQuestion(ctx context.Context, fields model.BankQuestionFields) (*model.BankQuestion, error) {
	var saved *model.BankQuestion
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		if err := validateBankFields(fields); err != nil {
			return false, err
		}
		q := bankQuestionFrom(fields)
		q.ID = s.lib.newID()
		q.CreatedAt = s.lib.now()
		store.QuestionBank[userID] = append(store.QuestionBank[userID], q)
		saved = &q
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("save bank question: %w", err)
	}
	return saved, nil
}

// ListBankQuestions returns the acting user's bank, newest first.
func (s *BankService) ListBankQuestions(ctx context.Context) []model.BankQuestion {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return []model.BankQuestion{}
	}
	return newestQuestionsFirst(store.QuestionBank[userID])
}

// UpdateBankQuestion replaces the question with q.ID, appending it when no
// such question exists. A zero CreatedAt keeps the existing timestamp.
func (s *BankService) UpdateBankQuestion(ctx context.Context, q model.BankQuestion) (*model.BankQuestion, error) {
	var saved *model.BankQuestion
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		if strings.TrimSpace(q.ID) == "" {
			return false, common.Errorf("missing id: %w", common.ErrBadRequest)
		}
		if err := validateBankFields(fieldsOf(q)); err != nil {
			return false, err
		}
		bank := store.QuestionBank[userID]
		idx := slices.IndexFunc(bank, func(existing model.BankQuestion) bool { return existing.ID == q.ID })
		if idx >= 0 {
			if q.CreatedAt.IsZero() {
				q.CreatedAt = bank[idx].CreatedAt
			}
			bank[idx] = q
		} else {
			if q.CreatedAt.IsZero() {
				q.CreatedAt = s.lib.now()
			}
			bank = append(bank, q)
		}
		store.QuestionBank[userID] = bank
		saved = &q
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update bank question %s: %w", q.ID, err)
	}
	return saved, nil
}

// DeleteBankQuestion removes the question with id; an unknown id is a no-op.
func (s *BankService) DeleteBankQuestion(ctx context.Context, id string) error {
	return s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		bank := store.QuestionBank[userID]
		kept := slices.DeleteFunc(slices.Clone(bank), func(q model.BankQuestion) bool { return q.ID == id })
		if len(kept) == len(bank) {
			return false, nil
		}
		store.QuestionBank[userID] = kept
		return true, nil
	})
}

func validateBankFields(f model.BankQuestionFields) error {
	if strings.TrimSpace(f.Text) == "" {
		return common.Errorf("question text is required: %w", common.ErrValidation)
	}
	switch f.Type {
	case model.QuestionTypeMCQ:
		if len(f.Options) < 2 {
			return common.Errorf("multiple choice questions need at least two options: %w", common.ErrValidation)
		}
	case model.QuestionTypeShort, model.QuestionTypeLong, "":
	default:
		return common.Errorf("unknown question type %q: %w", f.Type, common.ErrValidation)
	}
	if f.Marks < 0 {
		return common.Errorf("marks cannot be negative: %w", common.ErrValidation)
	}
	return nil
}

func bankQuestionFrom(f model.BankQuestionFields) model.BankQuestion {
	return model.BankQuestion{
		Subject:    f.Subject,
		Topic:      f.Topic,
		Text:       f.Text,
		Type:       f.Type,
		Options:    slices.Clone(f.Options),
		Answer:     f.Answer,
		Marks:      f.Marks,
		Difficulty: f.Difficulty,
	}
}

func fieldsOf(q model.BankQuestion) model.BankQuestionFields {
	return model.BankQuestionFields{
		Subject:    q.Subject,
		Topic:      q.Topic,
		Text:       q.Text,
		Type:       q.Type,
		Options:    q.Options,
		Answer:     q.Answer,
		Marks:      q.Marks,
		Difficulty: q.Difficulty,
	}
}
