// Package sharelink turns papers into URL-fragment tokens and back. Tokens
// are plain base64url over the paper's JSON: anyone holding a link can read
// the whole paper.
package sharelink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"papergen/internal/common"
	"papergen/internal/domain/model"
)

type DecodeReason string

const (
	ReasonInvalidEncoding DecodeReason = "invalid_encoding"
	ReasonInvalidUTF8     DecodeReason = "invalid_utf8"
	ReasonInvalidJSON     DecodeReason = "invalid_json"
	ReasonInvalidShape    DecodeReason = "invalid_shape"
)

// DecodeError reports a share token that does not carry a paper.
type DecodeError struct {
	Reason DecodeReason
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "share link: " + string(e.Reason)
	}
	return fmt.Sprintf("share link: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets callers treat every decode failure as a bad request.
func (e *DecodeError) Is(target error) bool {
	return target == common.ErrBadRequest
}

var encoding = base64.RawURLEncoding

// Encode serialises p into a token safe to place in a URL fragment.
func Encode(p *model.QuestionPaper) (string, error) {
	if p == nil {
		return "", fmt.Errorf("encode share token: nil paper: %w", common.ErrBadRequest)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode share token: %w", err)
	}
	return encoding.EncodeToString(data), nil
}

// Decode reverses Encode. It returns a *DecodeError and no paper when the
// token is not base64url, not UTF-8, not JSON, or not shaped like a paper.
func Decode(token string) (*model.QuestionPaper, error) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return nil, &DecodeError{Reason: ReasonInvalidEncoding, Err: errors.New("empty token")}
	}
	data, err := encoding.DecodeString(token)
	if err != nil {
		return nil, &DecodeError{Reason: ReasonInvalidEncoding, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &DecodeError{Reason: ReasonInvalidUTF8}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var paper model.QuestionPaper
	if err := dec.Decode(&paper); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &DecodeError{Reason: ReasonInvalidShape, Err: err}
		}
		return nil, &DecodeError{Reason: ReasonInvalidJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Reason: ReasonInvalidShape, Err: errors.New("trailing data after paper")}
	}
	if err := validateShape(&paper); err != nil {
		return nil, &DecodeError{Reason: ReasonInvalidShape, Err: err}
	}
	return &paper, nil
}

func validateShape(p *model.QuestionPaper) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(p.Subject) == "":
		return errors.New("missing subject")
	case p.CreatedAt.IsZero():
		return errors.New("missing createdAt")
	}
	return nil
}

// UserMessage is the alert text shown for a link that cannot be opened.
func UserMessage(err error) string {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return "This share link is invalid or has been corrupted."
	}
	return "The shared paper could not be opened."
}
