package extractor

import (
	"context"
	"regexp"
	"strings"

	"github.com/ashureev/hr-assistant/internal/domain"
)

type rule struct {
	intent     domain.Intent
	pattern    *regexp.Regexp
	confidence float64
	// missing slots are reported as null so callers can ask for them.
	missing []string
	fix     func(domain.Slots)
}

func (r rule) match(text string) (Result, bool) {
	m := r.pattern.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	slots := domain.Slots{}
	for i, name := range r.pattern.SubexpNames() {
		if i == 0 || name == "" || strings.TrimSpace(m[i]) == "" {
			continue
		}
		slots[name] = strings.TrimSpace(m[i])
	}
	if r.fix != nil {
		r.fix(slots)
	}
	for _, k := range r.missing {
		if _, ok := slots[k]; !ok {
			slots[k] = nil
		}
	}
	return Result{
		Intent:            r.intent,
		Slots:             slots,
		Confidence:        r.confidence,
		NeedsConfirmation: r.intent.Executable(),
	}, true
}

// moveSlot renames from to to when present.
func moveSlot(from, to string) func(domain.Slots) {
	return func(s domain.Slots) {
		if v, ok := s[from]; ok {
			s[to] = v
			delete(s, from)
		}
	}
}

var defaultRules = []rule{
	{intent: domain.IntentHelp, confidence: 0.95,
		pattern: regexp.MustCompile(`(?i)^(?:help|commands|what can you do)$`)},
	{intent: domain.IntentViewGlobalHistory, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:show|view|list)\s+(?:all|global|everyone's)\s+(?:action\s+)?history$`)},
	{intent: domain.IntentViewHistory, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:show|view|list)\s+(?:my\s+|session\s+)?(?:action\s+)?history$`)},
	{intent: domain.IntentViewTeams, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:show|view|list)\s+(?:all\s+)?(?:the\s+)?teams$`)},
	{intent: domain.IntentViewEmployees, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:show|view|list)\s+(?:all\s+)?(?:the\s+)?employees(?:\s+(?:on|in)\s+(?:the\s+)?(?P<team>[\w-]+?)(?:\s+team)?)?$`)},
	{intent: domain.IntentHireEmployee, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^hire\s+(?P<name>.+?)\s+(?:to|on|into|for)\s+(?:the\s+)?(?P<team>[\w-]+)(?:\s+team)?\s+in\s+(?P<country>.+)$`)},
	{intent: domain.IntentIncomplete, missing: []string{"team", "country"},
		pattern: regexp.MustCompile(`(?i)^hire\s+(?P<name>.+?)(?:\s+(?:to|on|into|for)\s+(?:the\s+)?(?P<team>[\w-]+)(?:\s+team)?)?$`)},
	{intent: domain.IntentGiveBonus, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^give\s+(?P<name>.+?)\s+an?\s+(?P<amount>\$?[\d][\d,.]*[km]?)(?:\s+(?P<bonusType>[a-z]+))?\s+bonus$`)},
	{intent: domain.IntentIncomplete, missing: []string{"amount"},
		pattern: regexp.MustCompile(`(?i)^give\s+(?:(?P<name>.+?)\s+an?\s+bonus|an?\s+bonus\s+to\s+(?P<target>.+))$`),
		fix:     moveSlot("target", "name")},
	{intent: domain.IntentChangeTitle, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:change|update)\s+(?P<name>.+?)(?:'s|’s)\s+title\s+to\s+(?P<newTitle>.+)$`)},
	{intent: domain.IntentIncomplete, missing: []string{"newTitle"},
		pattern: regexp.MustCompile(`(?i)^(?:change|update)\s+(?:the\s+)?title\s+(?:of|for)\s+(?P<name>.+)$`)},
	{intent: domain.IntentTerminateEmployee, confidence: 0.9,
		pattern: regexp.MustCompile(`(?i)^(?:terminate|fire)\s+(?P<name>.+?)(?:\s+(?:effective|on|as of)\s+(?P<termDate>.+)|\s+(?P<when>immediately|today|tomorrow|now))?$`),
		fix:     moveSlot("when", "termDate")},
	{intent: domain.IntentViewEmployee, confidence: 0.85,
		pattern: regexp.MustCompile(`(?i)^(?:show|view|who is)\s+(?:me\s+)?(?P<name>.+?)(?:'s\s+(?:profile|details|record))?$`)},
}

// Rules is a deterministic pattern based extractor for the documented
// command phrasings. It does not use conversation history.
type Rules struct {
	rules []rule
}

// NewRules returns an extractor with the built in patterns.
func NewRules() *Rules {
	return &Rules{rules: defaultRules}
}

var whitespace = regexp.MustCompile(`\s+`)

func (r *Rules) Extract(_ context.Context, text string, _ []domain.Message) (Result, error) {
	cleaned := strings.TrimRight(strings.TrimSpace(text), ".!?")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	for _, rl := range r.rules {
		if res, ok := rl.match(cleaned); ok {
			return res, nil
		}
	}
	return Unknown(), nil
}
