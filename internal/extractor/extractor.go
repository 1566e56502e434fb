// Package extractor maps user text onto an intent, its slots and a
// confidence score.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ashureev/hr-assistant/internal/domain"
)

// ErrMalformed marks extractor output that does not have the expected shape.
var ErrMalformed = fmt.Errorf("malformed extraction: %w", domain.ErrExternalService)

// Result is the typed outcome of an extraction.
type Result struct {
	Intent            domain.Intent `json:"intent"`
	Slots             domain.Slots  `json:"slots"`
	Confidence        float64       `json:"confidence"`
	NeedsConfirmation bool          `json:"needsConfirmation"`
}

// Unknown is the fallback result used whenever extraction fails.
func Unknown() Result {
	return Result{Intent: domain.IntentUnknown, Slots: domain.Slots{}, Confidence: 0}
}

// Extractor classifies text. history holds the most recent prior messages of
// the conversation, oldest first.
type Extractor interface {
	Extract(ctx context.Context, text string, history []domain.Message) (Result, error)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseJSON extracts the first JSON object from content, which may be
// wrapped in prose, and normalizes it.
func ParseJSON(content string) (Result, error) {
	raw := strings.TrimSpace(content)
	if m := jsonObjectPattern.FindString(raw); m != "" {
		raw = m
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Normalize(payload)
}

// Normalize validates a decoded payload. A missing intent, missing slots or a
// non-numeric confidence is an error. Unrecognised intents become unknown,
// confidence is clamped to [0, 1] and slot values other than strings and
// finite numbers are dropped.
func Normalize(raw map[string]any) (Result, error) {
	intentRaw, ok := raw["intent"].(string)
	if !ok || strings.TrimSpace(intentRaw) == "" {
		return Result{}, fmt.Errorf("%w: missing intent", ErrMalformed)
	}
	slotsRaw, ok := raw["slots"].(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("%w: missing slots", ErrMalformed)
	}
	confidence, ok := raw["confidence"].(float64)
	if !ok || math.IsNaN(confidence) {
		return Result{}, fmt.Errorf("%w: confidence is not a number", ErrMalformed)
	}

	slots := make(domain.Slots, len(slotsRaw))
	for k, v := range slotsRaw {
		switch t := v.(type) {
		case nil, string:
			slots[k] = t
		case float64:
			if !math.IsNaN(t) && !math.IsInf(t, 0) {
				slots[k] = t
			}
		case bool:
			slots[k] = fmt.Sprint(t)
		}
	}

	res := Result{
		Intent:     domain.ParseIntent(intentRaw),
		Slots:      slots,
		Confidence: math.Max(0, math.Min(1, confidence)),
	}
	res.NeedsConfirmation, _ = raw["needsConfirmation"].(bool)
	return res, nil
}

// Static always answers with the unknown intent.
type Static struct{}

func (Static) Extract(context.Context, string, []domain.Message) (Result, error) {
	return Unknown(), nil
}

var errNoExtractor = errors.New("extractor: no extractor configured")
