package domain

import "time"

// ActionDetails is the intent-specific projection of a command stored in
// the audit log.
type ActionDetails struct {
	EmployeeName    string  `json:"employeeName,omitempty"`
	EmployeeID      string  `json:"employeeId,omitempty"`
	Team            string  `json:"team,omitempty"`
	Country         string  `json:"country,omitempty"`
	Title           string  `json:"title,omitempty"`
	Salary          float64 `json:"salary,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	BonusType       string  `json:"bonusType,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	FromValue       string  `json:"fromValue,omitempty"`
	ToValue         string  `json:"toValue,omitempty"`
	EffectiveDate   string  `json:"effectiveDate,omitempty"`
	TerminationDate string  `json:"terminationDate,omitempty"`
}

// ActionLog records one attempted mutating action and its outcome.
// Entries are append-only.
type ActionLog struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	Action       Intent        `json:"action"`
	Details      ActionDetails `json:"details"`
	Timestamp    time.Time     `json:"timestamp"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}
