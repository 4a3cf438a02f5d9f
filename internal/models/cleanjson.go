package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidJSON is returned by CleanJSON when the text is not JSON after the
// markdown fences are removed.
var ErrInvalidJSON = errors.New("invalid JSON")

// CleanJSON strips surrounding whitespace and a markdown code fence
// (```json ... ``` or ``` ... ```) from model output and checks that what is
// left is valid JSON.
func CleanJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimLeft(s, " \t")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	if s == "" || !json.Valid([]byte(s)) {
		return "", ErrInvalidJSON
	}
	return s, nil
}
