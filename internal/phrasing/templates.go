// Package phrasing produces the assistant's confirmation, success and
// follow-up messages.
package phrasing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/command"
	"github.com/ashureev/hr-assistant/internal/domain"
)

const (
	fallbackConfirmation = "Please confirm this action."
	fallbackSuccess      = "✅ Action completed successfully!"
	fallbackIncomplete   = "I need more information to complete this request."

	displayDateLayout = "Monday, January 2, 2006"
)

// Phraser writes user-facing text for a command. Implementations must
// always return a usable message.
type Phraser interface {
	Confirmation(ctx context.Context, intent domain.Intent, slots domain.Slots) string
	Success(ctx context.Context, intent domain.Intent, slots domain.Slots, result domain.CommandResult) string
	Incomplete(ctx context.Context, slots domain.Slots) string
}

// Templates is the deterministic Phraser.
type Templates struct {
	now func() time.Time
}

// NewTemplates returns a Templates phraser. A nil now uses time.Now.
func NewTemplates(now func() time.Time) *Templates {
	if now == nil {
		now = time.Now
	}
	return &Templates{now: now}
}

func (t *Templates) Confirmation(_ context.Context, intent domain.Intent, slots domain.Slots) string {
	name := slotOr(slots, "name", "this employee")
	var action string
	switch intent {
	case domain.IntentHireEmployee:
		action = fmt.Sprintf("hire %s as a %s in the %s team located in %s, starting %s",
			name, slotOr(slots, "title", "Software Engineer"), slotOr(slots, "team", "requested"),
			slotOr(slots, "country", "the requested country"), t.date(slots, "startDate"))
	case domain.IntentGiveBonus:
		action = fmt.Sprintf("give %s a %s bonus of %s", name, slotOr(slots, "bonusType", "performance"), t.amount(slots, "amount"))
	case domain.IntentChangeTitle:
		action = fmt.Sprintf("change %s's title to %s, effective %s", name, slotOr(slots, "newTitle", "the new title"), t.date(slots, "effectiveDate"))
	case domain.IntentTerminateEmployee:
		action = fmt.Sprintf("terminate %s effective %s. This will trigger offboarding procedures", name, t.date(slots, "termDate"))
	case domain.IntentViewEmployees:
		if team, ok := slots.String("team"); ok {
			action = fmt.Sprintf("show all employees on the %s team", team)
		} else {
			action = "show all employees"
		}
	case domain.IntentViewEmployee:
		action = fmt.Sprintf("show the details for %s", name)
	case domain.IntentViewTeams:
		action = "show all teams"
	case domain.IntentViewHistory:
		action = "show the actions recorded in this session"
	case domain.IntentViewGlobalHistory:
		action = "show all recorded actions across sessions"
	case domain.IntentHelp:
		action = "list everything I can help with"
	default:
		return fallbackConfirmation
	}
	return "I will " + action + ". Should I proceed?"
}

func (t *Templates) Success(_ context.Context, intent domain.Intent, slots domain.Slots, result domain.CommandResult) string {
	if result.Message == "" {
		return fallbackSuccess
	}
	data := result.Data
	switch intent {
	case domain.IntentHireEmployee:
		if id, ok := data["employeeId"].(string); ok {
			return fmt.Sprintf("✅ %s Their employee ID is %s.", result.Message, id)
		}
	case domain.IntentGiveBonus:
		if amount, ok := data["bonusAmount"].(float64); ok {
			return fmt.Sprintf("✅ %s A %s %s bonus will be paid in the next payroll cycle.",
				result.Message, audit.Money(amount), fmt.Sprint(data["bonusType"]))
		}
	case domain.IntentChangeTitle:
		if oldTitle, ok := data["oldTitle"].(string); ok {
			return fmt.Sprintf("✅ %s %s is now %s (previously %s).",
				result.Message, slotOr(slots, "name", "The employee"), fmt.Sprint(data["newTitle"]), oldTitle)
		}
	case domain.IntentTerminateEmployee:
		if pay, ok := data["finalPay"].(float64); ok {
			return fmt.Sprintf("✅ %s The final day is %s and final pay is %s.",
				result.Message, displayDate(fmt.Sprint(data["terminationDate"])), audit.Money(pay))
		}
	default:
		return result.Message
	}
	return "✅ " + result.Message
}

var slotLabels = map[string]string{
	"name":          "the employee's name",
	"team":          "the team",
	"country":       "the country",
	"amount":        "the bonus amount",
	"newTitle":      "the new title",
	"termDate":      "the termination date",
	"title":         "the job title",
	"salary":        "the salary",
	"startDate":     "the start date",
	"effectiveDate": "the effective date",
}

var slotOrder = []string{"name", "team", "country", "amount", "newTitle", "termDate"}

func (t *Templates) Incomplete(_ context.Context, slots domain.Slots) string {
	missing := MissingSlots(slots)
	if len(missing) == 0 {
		return fallbackIncomplete
	}
	labels := make([]string, 0, len(missing))
	for _, k := range missing {
		if label, ok := slotLabels[k]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, k)
		}
	}
	return fmt.Sprintf("I need more information to proceed. Could you please tell me %s?", joinWords(labels))
}

// MissingSlots lists slot names whose value is null or blank, in a stable
// order.
func MissingSlots(slots domain.Slots) []string {
	var missing []string
	seen := map[string]bool{}
	for _, k := range slotOrder {
		if _, ok := slots[k]; ok {
			seen[k] = true
			if _, present := slots.String(k); !present {
				missing = append(missing, k)
			}
		}
	}
	var rest []string
	for k := range slots {
		if seen[k] {
			continue
		}
		if _, present := slots.String(k); !present {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(missing, rest...)
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

func slotOr(slots domain.Slots, key, fallback string) string {
	if v, ok := slots.String(key); ok {
		return v
	}
	return fallback
}

func (t *Templates) amount(slots domain.Slots, key string) string {
	n, ok, err := slots.Number(key)
	if err != nil || !ok {
		return slotOr(slots, key, "the requested amount")
	}
	return audit.Money(n)
}

func (t *Templates) date(slots domain.Slots, key string) string {
	raw, ok := slots.String(key)
	if !ok || strings.EqualFold(raw, "immediately") {
		return "immediately"
	}
	return displayDate(command.ParseDate(raw, t.now()))
}

// displayDate renders a YYYY-MM-DD date as "Friday, March 13, 2026".
func displayDate(s string) string {
	d, err := time.Parse(command.DateLayout, s)
	if err != nil {
		return s
	}
	return d.Format(displayDateLayout)
}
