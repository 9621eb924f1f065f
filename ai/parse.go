package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NethermindEth/magi/core"
)

// ExtractJSON returns the span from the first '{' to the last '}' so replies
// wrapped in prose or code fences still decode.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrInvalidFormat
	}
	return text[start : end+1], nil
}

// ParseVerdict decodes a model reply into a verdict of the simulator's shape.
func ParseVerdict(text string) (core.Verdict, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return core.Verdict{}, err
	}

	var verdict core.Verdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return core.Verdict{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// models sometimes echo an empty votes object next to an invalid verdict
	if !verdict.IsValid {
		verdict = core.InvalidVerdict(verdict.ErrorMessage)
	} else {
		verdict.ErrorMessage = ""
	}

	if err := verdict.Validate(); err != nil {
		return core.Verdict{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return verdict, nil
}
