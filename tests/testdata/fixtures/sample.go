package fixtures

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when the input contains no tokens.
var ErrEmptyInput = errors.New("empty input")

// DefaultSeparator splits token lists.
const DefaultSeparator = ","

// Token is a single parsed element.
type Token struct {
	Value string
	Index int
}

// SplitTokens breaks a separated list into trimmed tokens.
func SplitTokens(input string) ([]Token, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	parts := strings.Split(input, DefaultSeparator)
	tokens := make([]Token, 0, len(parts))
	for i, part := range parts {
		tokens = append(tokens, Token{Value: strings.TrimSpace(part), Index: i})
	}
	return tokens, nil
}
