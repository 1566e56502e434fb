// Package command turns an intent and its slots into a typed command and
// executes it against the employee directory, recording mutating actions in
// the audit log.
package command

import "github.com/ashureev/hr-assistant/internal/domain"

// Command is one validated request. The concrete types below are the only
// implementations.
type Command interface {
	Intent() domain.Intent
	// Details is the audit projection of the command as requested.
	Details() domain.ActionDetails
	isCommand()
}

// HireEmployee adds a new active employee.
type HireEmployee struct {
	Name      string
	Team      string
	Country   string
	Title     string
	Salary    float64
	StartDate string
}

// GiveBonus grants a one-off bonus. It does not change the employee record.
type GiveBonus struct {
	Name      string
	Amount    float64
	BonusType string
	Reason    string
}

// ChangeTitle replaces an employee's job title.
type ChangeTitle struct {
	Name          string
	NewTitle      string
	EffectiveDate string
}

// TerminateEmployee moves an employee to the terminated status.
type TerminateEmployee struct {
	Name     string
	TermDate string
	Reason   string
}

// ViewEmployees lists employees, optionally restricted to one team.
type ViewEmployees struct {
	Team string
}

// ViewEmployee shows a single employee.
type ViewEmployee struct {
	Name string
}

// ViewTeams lists teams.
type ViewTeams struct{}

// ViewHistory lists the audit entries of the caller's session.
type ViewHistory struct{}

// ViewGlobalHistory lists audit entries across all sessions, optionally
// restricted to one action.
type ViewGlobalHistory struct {
	Action domain.Intent
}

// Help describes what the assistant can do.
type Help struct{}

func (HireEmployee) Intent() domain.Intent      { return domain.IntentHireEmployee }
func (GiveBonus) Intent() domain.Intent         { return domain.IntentGiveBonus }
func (ChangeTitle) Intent() domain.Intent       { return domain.IntentChangeTitle }
func (TerminateEmployee) Intent() domain.Intent { return domain.IntentTerminateEmployee }
func (ViewEmployees) Intent() domain.Intent     { return domain.IntentViewEmployees }
func (ViewEmployee) Intent() domain.Intent      { return domain.IntentViewEmployee }
func (ViewTeams) Intent() domain.Intent         { return domain.IntentViewTeams }
func (ViewHistory) Intent() domain.Intent       { return domain.IntentViewHistory }
func (ViewGlobalHistory) Intent() domain.Intent { return domain.IntentViewGlobalHistory }
func (Help) Intent() domain.Intent              { return domain.IntentHelp }

func (c HireEmployee) Details() domain.ActionDetails {
	return domain.ActionDetails{
		EmployeeName:  c.Name,
		Team:          c.Team,
		Country:       c.Country,
		Title:         c.Title,
		Salary:        c.Salary,
		EffectiveDate: c.StartDate,
	}
}

func (c GiveBonus) Details() domain.ActionDetails {
	return domain.ActionDetails{
		EmployeeName: c.Name,
		Amount:       c.Amount,
		BonusType:    c.BonusType,
		Reason:       c.Reason,
	}
}

func (c ChangeTitle) Details() domain.ActionDetails {
	return domain.ActionDetails{
		EmployeeName:  c.Name,
		ToValue:       c.NewTitle,
		EffectiveDate: c.EffectiveDate,
	}
}

func (c TerminateEmployee) Details() domain.ActionDetails {
	return domain.ActionDetails{
		EmployeeName:    c.Name,
		TerminationDate: c.TermDate,
		Reason:          c.Reason,
	}
}

func (c ViewEmployees) Details() domain.ActionDetails { return domain.ActionDetails{Team: c.Team} }
func (c ViewEmployee) Details() domain.ActionDetails {
	return domain.ActionDetails{EmployeeName: c.Name}
}
func (ViewTeams) Details() domain.ActionDetails   { return domain.ActionDetails{} }
func (ViewHistory) Details() domain.ActionDetails { return domain.ActionDetails{} }
func (ViewGlobalHistory) Details() domain.ActionDetails {
	return domain.ActionDetails{}
}
func (Help) Details() domain.ActionDetails { return domain.ActionDetails{} }

func (HireEmployee) isCommand()      {}
func (GiveBonus) isCommand()         {}
func (ChangeTitle) isCommand()       {}
func (TerminateEmployee) isCommand() {}
func (ViewEmployees) isCommand()     {}
func (ViewEmployee) isCommand()      {}
func (ViewTeams) isCommand()         {}
func (ViewHistory) isCommand()       {}
func (ViewGlobalHistory) isCommand() {}
func (Help) isCommand()              {}
