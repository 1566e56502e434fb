package audit

import (
	"fmt"
	"math"

	"github.com/ashureev/hr-assistant/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const displayTimeLayout = "Jan 2, 2006 3:04 PM MST"

// Money formats an amount as whole dollars with thousands separators.
func Money(amount float64) string {
	p := message.NewPrinter(language.English)
	rounded := math.Round(amount)
	if math.IsNaN(rounded) || math.Abs(rounded) >= math.MaxInt64 {
		return p.Sprintf("$%.0f", rounded)
	}
	return p.Sprintf("$%d", int64(rounded))
}

// Format renders an entry as a single human readable line.
func Format(entry domain.ActionLog) string {
	status := "✅"
	if !entry.Success {
		status = "❌"
	}

	d := entry.Details
	var description string
	switch entry.Action {
	case domain.IntentHireEmployee:
		description = fmt.Sprintf("Hired %s to %s team in %s", d.EmployeeName, d.Team, d.Country)
	case domain.IntentGiveBonus:
		description = fmt.Sprintf("Gave %s a %s bonus", d.EmployeeName, Money(d.Amount))
	case domain.IntentChangeTitle:
		description = fmt.Sprintf("Changed %s's title to %s", d.EmployeeName, d.ToValue)
	case domain.IntentTerminateEmployee:
		description = fmt.Sprintf("Terminated %s effective %s", d.EmployeeName, d.TerminationDate)
	default:
		description = fmt.Sprintf("Executed %s", entry.Action)
		if d.EmployeeName != "" {
			description += " for " + d.EmployeeName
		}
	}

	line := fmt.Sprintf("%s %s (%s)", status, description, entry.Timestamp.UTC().Format(displayTimeLayout))
	if !entry.Success && entry.ErrorMessage != "" {
		line += " - " + entry.ErrorMessage
	}
	return line
}
