package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Intent is the action a user's message asks for.
type Intent string

const (
	IntentHireEmployee      Intent = "hire_employee"
	IntentGiveBonus         Intent = "give_bonus"
	IntentChangeTitle       Intent = "change_title"
	IntentTerminateEmployee Intent = "terminate_employee"
	IntentViewEmployees     Intent = "view_employees"
	IntentViewEmployee      Intent = "view_employee"
	IntentViewTeams         Intent = "view_teams"
	IntentViewHistory       Intent = "view_history"
	IntentViewGlobalHistory Intent = "view_global_history"
	IntentHelp              Intent = "help"
	IntentIncomplete        Intent = "incomplete"
	IntentUnknown           Intent = "unknown"
)

var knownIntents = map[Intent]struct{}{
	IntentHireEmployee:      {},
	IntentGiveBonus:         {},
	IntentChangeTitle:       {},
	IntentTerminateEmployee: {},
	IntentViewEmployees:     {},
	IntentViewEmployee:      {},
	IntentViewTeams:         {},
	IntentViewHistory:       {},
	IntentViewGlobalHistory: {},
	IntentHelp:              {},
	IntentIncomplete:        {},
	IntentUnknown:           {},
}

// ParseIntent maps a raw intent string onto a known Intent.
// Unrecognised values become IntentUnknown.
func ParseIntent(raw string) Intent {
	i := Intent(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownIntents[i]; ok {
		return i
	}
	return IntentUnknown
}

// Mutating reports whether the intent changes employee records.
// Only mutating intents are written to the audit log.
func (i Intent) Mutating() bool {
	switch i {
	case IntentHireEmployee, IntentGiveBonus, IntentChangeTitle, IntentTerminateEmployee:
		return true
	}
	return false
}

// Executable reports whether the intent can become a command.
func (i Intent) Executable() bool {
	return i != IntentIncomplete && i != IntentUnknown && i != ""
}

// Slots maps parameter names to extracted values. Values are string,
// float64 or nil.
type Slots map[string]any

// Clone returns a shallow copy of s.
func (s Slots) Clone() Slots {
	if s == nil {
		return Slots{}
	}
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the trimmed string value for key. Numbers are formatted
// without exponent. The boolean is false for missing, nil or blank values.
func (s Slots) String(key string) (string, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return "", false
	}
	var str string
	switch t := v.(type) {
	case string:
		str = strings.TrimSpace(t)
	case float64:
		str = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		str = strconv.Itoa(t)
	case int64:
		str = strconv.FormatInt(t, 10)
	default:
		str = strings.TrimSpace(fmt.Sprint(t))
	}
	if str == "" {
		return "", false
	}
	return str, true
}

// Number returns the numeric value for key. Strings such as "$5,000" are
// accepted. The boolean is false when the slot is absent or nil; a present
// value that is not a finite number yields an error.
func (s Slots) Number(key string) (float64, bool, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", "_", "", " ", "").Replace(strings.TrimSpace(t))
		if cleaned == "" {
			return 0, false, nil
		}
		multiplier := 1.0
		switch {
		case strings.HasSuffix(strings.ToLower(cleaned), "k"):
			multiplier = 1000
			cleaned = cleaned[:len(cleaned)-1]
		case strings.HasSuffix(strings.ToLower(cleaned), "m"):
			multiplier = 1000000
			cleaned = cleaned[:len(cleaned)-1]
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, true, fmt.Errorf("slot %s: %q is not a number", key, t)
		}
		f = parsed * multiplier
	default:
		return 0, true, fmt.Errorf("slot %s: unsupported value type %T", key, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, fmt.Errorf("slot %s: %v is not a finite number", key, v)
	}
	return f, true, nil
}

// CommandResult is the outcome of executing a command.
type CommandResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Failed builds an unsuccessful result with the given message.
func Failed(message string) CommandResult {
	return CommandResult{Success: false, Message: message}
}
