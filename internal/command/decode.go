package command

import (
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
)

const (
	defaultTitle     = "Software Engineer"
	defaultSalary    = 80000
	defaultCurrency  = "USD"
	defaultBonusType = "performance"
	defaultReason    = "Not specified"
)

// Decode validates slots for intent and builds the matching Command.
// Missing or malformed slots yield a domain.ErrValidation UserError.
func Decode(intent domain.Intent, slots domain.Slots, now time.Time) (Command, error) {
	switch intent {
	case domain.IntentHireEmployee:
		return decodeHire(slots, now)
	case domain.IntentGiveBonus:
		return decodeBonus(slots)
	case domain.IntentChangeTitle:
		return decodeChangeTitle(slots, now)
	case domain.IntentTerminateEmployee:
		return decodeTerminate(slots, now)
	case domain.IntentViewEmployees:
		team, _ := slots.String("team")
		return ViewEmployees{Team: team}, nil
	case domain.IntentViewEmployee:
		name, ok := slots.String("name")
		if !ok {
			return nil, domain.Validationf("Which employee would you like to see?")
		}
		return ViewEmployee{Name: name}, nil
	case domain.IntentViewTeams:
		return ViewTeams{}, nil
	case domain.IntentViewHistory:
		return ViewHistory{}, nil
	case domain.IntentViewGlobalHistory:
		var action domain.Intent
		if raw, ok := slots.String("action"); ok {
			if parsed := domain.ParseIntent(raw); parsed.Mutating() {
				action = parsed
			}
		}
		return ViewGlobalHistory{Action: action}, nil
	case domain.IntentHelp:
		return Help{}, nil
	default:
		return nil, domain.Validationf("Unknown command. I can help with hiring, bonuses, title changes, and terminations.")
	}
}

func decodeHire(slots domain.Slots, now time.Time) (Command, error) {
	name, okName := slots.String("name")
	team, okTeam := slots.String("team")
	country, okCountry := slots.String("country")
	if !okName || !okTeam || !okCountry {
		return nil, domain.Validationf("Missing required information. I need name, team, and country to hire someone.")
	}

	cmd := HireEmployee{
		Name:    name,
		Team:    team,
		Country: country,
		Title:   defaultTitle,
		Salary:  defaultSalary,
	}
	if title, ok := slots.String("title"); ok {
		cmd.Title = title
	}
	salary, ok, err := slots.Number("salary")
	if err != nil {
		return nil, domain.Validationf("The salary \"%v\" is not a valid amount.", slots["salary"])
	}
	if ok {
		if salary <= 0 {
			return nil, domain.Validationf("The salary must be greater than zero.")
		}
		cmd.Salary = salary
	}
	start, _ := slots.String("startDate")
	cmd.StartDate = ParseDate(start, now)
	return cmd, nil
}

func decodeBonus(slots domain.Slots) (Command, error) {
	name, okName := slots.String("name")
	amount, okAmount, err := slots.Number("amount")
	if err != nil {
		return nil, domain.Validationf("The bonus amount \"%v\" is not a valid amount.", slots["amount"])
	}
	if !okName || !okAmount {
		return nil, domain.Validationf("I need both employee name and bonus amount.")
	}
	if amount <= 0 {
		return nil, domain.Validationf("The bonus amount must be greater than zero.")
	}

	cmd := GiveBonus{Name: name, Amount: amount, BonusType: defaultBonusType}
	if bonusType, ok := slots.String("bonusType"); ok {
		cmd.BonusType = bonusType
	}
	cmd.Reason, _ = slots.String("reason")
	return cmd, nil
}

func decodeChangeTitle(slots domain.Slots, now time.Time) (Command, error) {
	name, okName := slots.String("name")
	title, okTitle := slots.String("newTitle")
	if !okName || !okTitle {
		return nil, domain.Validationf("I need both employee name and the new title.")
	}
	effective, _ := slots.String("effectiveDate")
	return ChangeTitle{Name: name, NewTitle: title, EffectiveDate: ParseDate(effective, now)}, nil
}

func decodeTerminate(slots domain.Slots, now time.Time) (Command, error) {
	name, ok := slots.String("name")
	if !ok {
		return nil, domain.Validationf("I need the name of the employee to terminate.")
	}
	termDate, _ := slots.String("termDate")
	cmd := TerminateEmployee{Name: name, TermDate: ParseDate(termDate, now), Reason: defaultReason}
	if reason, ok := slots.String("reason"); ok {
		cmd.Reason = reason
	}
	return cmd, nil
}
