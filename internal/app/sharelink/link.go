package sharelink

import (
	"errors"
	"net/url"
	"strings"

	"papergen/internal/domain/model"
)

// FragmentPrefix starts the fragment of every share link.
const FragmentPrefix = "share="

// BuildLink returns baseURL with the paper's token in the fragment.
func BuildLink(baseURL string, p *model.QuestionPaper) (string, error) {
	token, err := Encode(p)
	if err != nil {
		return "", err
	}
	base := strings.TrimRight(baseURL, "/")
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + "/#" + FragmentPrefix + token, nil
}

// ParseLink extracts the token from a full share link, a bare fragment
// ("#share=..." or "share=...") or a bare token.
func ParseLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &DecodeError{Reason: ReasonInvalidEncoding, Err: errors.New("empty link")}
	}

	fragment := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", &DecodeError{Reason: ReasonInvalidEncoding, Err: err}
		}
		if u.Fragment == "" {
			return "", &DecodeError{Reason: ReasonInvalidEncoding, Err: errors.New("link has no fragment")}
		}
		fragment = u.Fragment
	}
	fragment = strings.TrimPrefix(fragment, "#")
	if strings.HasPrefix(fragment, FragmentPrefix) {
		return strings.TrimPrefix(fragment, FragmentPrefix), nil
	}
	if strings.Contains(fragment, "=") && !strings.HasSuffix(fragment, "=") {
		return "", &DecodeError{Reason: ReasonInvalidEncoding, Err: errors.New("fragment is not a share link")}
	}
	return fragment, nil
}

// DecodeLink is ParseLink followed by Decode.
func DecodeLink(raw string) (*model.QuestionPaper, error) {
	token, err := ParseLink(raw)
	if err != nil {
		return nil, err
	}
	return Decode(token)
}
