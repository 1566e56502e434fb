// Package domain contains core domain types for the HR assistant.
package domain

// EmployeeStatus is the employment state of an employee.
type EmployeeStatus string

const (
	StatusActive     EmployeeStatus = "active"
	StatusTerminated EmployeeStatus = "terminated"
	StatusOnLeave    EmployeeStatus = "on_leave"
)

// Valid reports whether s is a known status.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusTerminated, StatusOnLeave:
		return true
	}
	return false
}

// Employee is a person on the payroll.
type Employee struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Team      string         `json:"team" yaml:"team"`
	Country   string         `json:"country" yaml:"country"`
	Title     string         `json:"title" yaml:"title"`
	Salary    float64        `json:"salary" yaml:"salary"`
	Currency  string         `json:"currency" yaml:"currency"`
	Manager   string         `json:"manager" yaml:"manager"`
	StartDate string         `json:"startDate" yaml:"start_date"`
	Status    EmployeeStatus `json:"status" yaml:"status"`
}

// IsTerminated returns true once the employee has been terminated.
func (e Employee) IsTerminated() bool {
	return e.Status == StatusTerminated
}

// EmployeePatch holds the fields of an employee that may be changed in place.
// Nil fields are left untouched.
type EmployeePatch struct {
	Title    *string
	Salary   *float64
	Manager  *string
	Team     *string
	Status   *EmployeeStatus
	Currency *string
}

// Apply copies the non-nil fields of p onto e.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Salary != nil {
		e.Salary = *p.Salary
	}
	if p.Manager != nil {
		e.Manager = *p.Manager
	}
	if p.Team != nil {
		e.Team = *p.Team
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
}

// Team groups employees under a manager.
type Team struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department" yaml:"department"`
	Manager    string `json:"manager" yaml:"manager"`
}

// Country is a hiring jurisdiction. Supported and Embargoed reflect the
// employer-of-record constraints for that country.
type Country struct {
	Code      string `json:"code" yaml:"code"`
	Name      string `json:"name" yaml:"name"`
	Supported bool   `json:"supported" yaml:"supported"`
	Embargoed bool   `json:"embargoed" yaml:"embargoed"`
}

// Hireable returns true if new employees may be hired in the country.
func (c Country) Hireable() bool {
	return c.Supported && !c.Embargoed
}
