package command

import (
	"fmt"
	"strings"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/domain"
	"golang.org/x/text/cases"
)

func (e *Engine) viewEmployees(c ViewEmployees) domain.CommandResult {
	all := e.dir.Employees()
	employees := make([]domain.Employee, 0, len(all))
	if c.Team == "" {
		employees = all
	} else {
		if _, ok := e.dir.TeamByName(c.Team); !ok {
			return domain.Failed(fmt.Sprintf("Team %q does not exist. Available teams: %s.", c.Team, strings.Join(e.dir.TeamNames(), ", ")))
		}
		fold := cases.Fold()
		for _, emp := range all {
			if fold.String(emp.Team) == fold.String(c.Team) {
				employees = append(employees, emp)
			}
		}
	}

	if len(employees) == 0 {
		return domain.CommandResult{
			Success: true,
			Message: "There are no employees to show.",
			Data:    map[string]any{"employees": employees, "count": 0},
		}
	}

	var b strings.Builder
	if c.Team == "" {
		fmt.Fprintf(&b, "Here are all %d employees:\n", len(employees))
	} else {
		fmt.Fprintf(&b, "Here are the %d employees on the %s team:\n", len(employees), c.Team)
	}
	for _, emp := range employees {
		fmt.Fprintf(&b, "\n• %s - %s, %s team, %s (%s)", emp.Name, emp.Title, emp.Team, emp.Country, emp.Status)
	}
	return domain.CommandResult{
		Success: true,
		Message: b.String(),
		Data:    map[string]any{"employees": employees, "count": len(employees)},
	}
}

func (e *Engine) viewEmployee(c ViewEmployee) domain.CommandResult {
	emp, ok := e.dir.EmployeeByName(c.Name)
	if !ok {
		matches := e.dir.FindEmployeesByPartialName(c.Name)
		if len(matches) != 1 {
			return domain.Failed(domain.UserMessage(employeeNotFound(c.Name), ""))
		}
		emp = matches[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n", emp.Name, emp.ID)
	fmt.Fprintf(&b, "Title: %s\n", emp.Title)
	fmt.Fprintf(&b, "Team: %s\n", emp.Team)
	fmt.Fprintf(&b, "Manager: %s\n", emp.Manager)
	fmt.Fprintf(&b, "Country: %s\n", emp.Country)
	fmt.Fprintf(&b, "Salary: %s %s\n", audit.Money(emp.Salary), emp.Currency)
	fmt.Fprintf(&b, "Start date: %s\n", emp.StartDate)
	fmt.Fprintf(&b, "Status: %s", emp.Status)

	return domain.CommandResult{
		Success: true,
		Message: b.String(),
		Data:    map[string]any{"employee": emp},
	}
}

func (e *Engine) viewTeams() domain.CommandResult {
	teams := e.dir.Teams()
	headcount := make(map[string]int, len(teams))
	fold := cases.Fold()
	for _, emp := range e.dir.Employees() {
		if !emp.IsTerminated() {
			headcount[fold.String(emp.Team)]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "We have %d teams:\n", len(teams))
	for _, t := range teams {
		fmt.Fprintf(&b, "\n• %s (%s) - managed by %s, %d active employees", t.Name, t.Department, t.Manager, headcount[fold.String(t.Name)])
	}
	return domain.CommandResult{
		Success: true,
		Message: b.String(),
		Data:    map[string]any{"teams": teams},
	}
}

func historyResult(logs []domain.ActionLog, empty, heading string) domain.CommandResult {
	if len(logs) == 0 {
		return domain.CommandResult{
			Success: true,
			Message: empty,
			Data:    map[string]any{"logs": []domain.ActionLog{}},
		}
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		lines = append(lines, audit.Format(l))
	}
	return domain.CommandResult{
		Success: true,
		Message: heading + "\n\n" + strings.Join(lines, "\n"),
		Data:    map[string]any{"logs": logs},
	}
}
