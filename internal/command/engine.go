package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"strings"
	"time"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/directory"
	"github.com/ashureev/hr-assistant/internal/domain"
)

// InternalErrorMessage is shown to users when execution fails unexpectedly.
const InternalErrorMessage = "Sorry, something went wrong while processing your request. Please try again."

// HelpText lists the supported requests.
const HelpText = `I can help you with the following HR tasks:

• **Hiring**: "Hire [name] to the [team] team in [country]"
• **Bonuses**: "Give [name] a $[amount] bonus"
• **Title changes**: "Change [name]'s title to [new title]"
• **Terminations**: "Terminate [name] effective [date]"
• **Employees**: "Show all employees" or "Show [name]"
• **Teams**: "Show all teams"
• **History**: "Show my history" or "Show all history"`

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Request is an intent and its slots on behalf of a session.
type Request struct {
	Intent    domain.Intent
	Slots     domain.Slots
	SessionID string
	UserID    string
}

// Engine executes commands. It keeps no state between calls; all state lives
// in the directory and the audit log.
type Engine struct {
	dir    *directory.Directory
	audit  *audit.Log
	clock  Clock
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for default dates.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine over dir that records into log.
func NewEngine(dir *directory.Directory, log *audit.Log, opts ...Option) *Engine {
	e := &Engine{
		dir:    dir,
		audit:  log,
		clock:  realClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute decodes and runs req. Business failures are reported in the
// result; the error is non-nil only for unexpected faults, and wraps
// domain.ErrInternal.
func (e *Engine) Execute(ctx context.Context, req Request) (result domain.CommandResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command execution panicked",
				"intent", req.Intent,
				"session_id", req.SessionID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = domain.Failed(InternalErrorMessage)
			err = fmt.Errorf("%w: %v", domain.ErrInternal, r)
		}
	}()

	cmd, decodeErr := Decode(req.Intent, req.Slots, e.clock.Now())
	if decodeErr != nil {
		e.logger.Info("command rejected", "intent", req.Intent, "session_id", req.SessionID, "error", decodeErr)
		return domain.Failed(domain.UserMessage(decodeErr, "I could not understand that request.")), nil
	}
	return e.Run(ctx, cmd, req.SessionID, req.UserID), nil
}

// Run executes an already decoded command. Mutating commands append exactly
// one audit entry before Run returns.
func (e *Engine) Run(ctx context.Context, cmd Command, sessionID, userID string) domain.CommandResult {
	switch c := cmd.(type) {
	case HireEmployee:
		return e.hire(ctx, c, sessionID, userID)
	case GiveBonus:
		return e.giveBonus(ctx, c, sessionID, userID)
	case ChangeTitle:
		return e.changeTitle(ctx, c, sessionID, userID)
	case TerminateEmployee:
		return e.terminate(ctx, c, sessionID, userID)
	case ViewEmployees:
		return e.viewEmployees(c)
	case ViewEmployee:
		return e.viewEmployee(c)
	case ViewTeams:
		return e.viewTeams()
	case ViewHistory:
		return historyResult(e.audit.SessionLogs(sessionID), "No actions have been recorded in this session yet.", "Actions in this session:")
	case ViewGlobalHistory:
		return historyResult(e.audit.ByAction(c.Action), "No actions have been recorded yet.", "All recorded actions:")
	case Help:
		return domain.CommandResult{Success: true, Message: HelpText}
	default:
		panic(fmt.Sprintf("command: unhandled command type %T", cmd))
	}
}

func (e *Engine) hire(ctx context.Context, c HireEmployee, sessionID, userID string) domain.CommandResult {
	details := c.Details()

	if _, exists := e.dir.EmployeeByName(c.Name); exists {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, domain.Conflictf("%s is already employed in our system.", c.Name))
	}
	team, ok := e.dir.TeamByName(c.Team)
	if !ok {
		return e.fail(ctx, sessionID, userID, c.Intent(), details,
			domain.NotFoundf("Team %q does not exist. Available teams: %s.", c.Team, strings.Join(e.dir.TeamNames(), ", ")))
	}
	if !e.dir.IsCountrySupported(c.Country) {
		return e.fail(ctx, sessionID, userID, c.Intent(), details,
			domain.Validationf("We cannot hire in %s at this time. This country may be embargoed or not supported by our EOR partner.", c.Country))
	}
	country := c.Country
	if found, ok := e.dir.CountryByName(c.Country); ok {
		country = found.Name
	}

	created, err := e.dir.InsertEmployee(domain.Employee{
		Name:      c.Name,
		Team:      team.Name,
		Country:   country,
		Title:     c.Title,
		Salary:    c.Salary,
		Currency:  defaultCurrency,
		Manager:   team.Manager,
		StartDate: c.StartDate,
		Status:    domain.StatusActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			err = domain.Conflictf("%s is already employed in our system.", c.Name)
		}
		return e.fail(ctx, sessionID, userID, c.Intent(), details, err)
	}

	details.EmployeeID = created.ID
	details.Team = created.Team
	details.Country = created.Country
	e.audit.Record(ctx, sessionID, userID, c.Intent(), details, true, "")

	return domain.CommandResult{
		Success: true,
		Message: fmt.Sprintf("Successfully hired %s!", created.Name),
		Data: map[string]any{
			"employeeId": created.ID,
			"employee":   created,
		},
	}
}

func (e *Engine) giveBonus(ctx context.Context, c GiveBonus, sessionID, userID string) domain.CommandResult {
	details := c.Details()

	emp, ok := e.dir.EmployeeByName(c.Name)
	if !ok {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, employeeNotFound(c.Name))
	}
	details.EmployeeName = emp.Name
	details.EmployeeID = emp.ID

	var warnings []string
	if c.Amount > emp.Salary*3/10 {
		warnings = append(warnings, fmt.Sprintf("This bonus (%s) is more than 30%% of %s's annual salary.", audit.Money(c.Amount), emp.Name))
	}
	e.audit.Record(ctx, sessionID, userID, c.Intent(), details, true, "")

	return domain.CommandResult{
		Success: true,
		Message: fmt.Sprintf("Bonus approved for %s!", emp.Name),
		Data: map[string]any{
			"employeeId":  emp.ID,
			"bonusAmount": c.Amount,
			"bonusType":   c.BonusType,
		},
		Warnings: warnings,
	}
}

func (e *Engine) changeTitle(ctx context.Context, c ChangeTitle, sessionID, userID string) domain.CommandResult {
	details := c.Details()

	emp, ok := e.dir.EmployeeByName(c.Name)
	if !ok {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, employeeNotFound(c.Name))
	}
	details.EmployeeName = emp.Name
	details.EmployeeID = emp.ID

	var oldTitle string
	updated, err := e.dir.ModifyEmployee(emp.ID, func(rec *domain.Employee) error {
		oldTitle = rec.Title
		rec.Title = c.NewTitle
		return nil
	})
	if err != nil {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, notFoundOr(err, c.Name))
	}

	details.FromValue = oldTitle
	e.audit.Record(ctx, sessionID, userID, c.Intent(), details, true, "")

	return domain.CommandResult{
		Success: true,
		Message: fmt.Sprintf("Title updated for %s!", updated.Name),
		Data: map[string]any{
			"employeeId":    updated.ID,
			"oldTitle":      oldTitle,
			"newTitle":      updated.Title,
			"effectiveDate": c.EffectiveDate,
		},
	}
}

func (e *Engine) terminate(ctx context.Context, c TerminateEmployee, sessionID, userID string) domain.CommandResult {
	details := c.Details()

	emp, ok := e.dir.EmployeeByName(c.Name)
	if !ok {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, employeeNotFound(c.Name))
	}
	details.EmployeeName = emp.Name
	details.EmployeeID = emp.ID

	terminated, err := e.dir.ModifyEmployee(emp.ID, func(rec *domain.Employee) error {
		if rec.IsTerminated() {
			return domain.Conflictf("%s has already been terminated.", rec.Name)
		}
		rec.Status = domain.StatusTerminated
		return nil
	})
	if err != nil {
		return e.fail(ctx, sessionID, userID, c.Intent(), details, notFoundOr(err, c.Name))
	}

	e.audit.Record(ctx, sessionID, userID, c.Intent(), details, true, "")

	return domain.CommandResult{
		Success: true,
		Message: fmt.Sprintf("Termination processed for %s.", terminated.Name),
		Data: map[string]any{
			"employeeId":      terminated.ID,
			"terminationDate": c.TermDate,
			"reason":          c.Reason,
			"finalPay":        math.Round(terminated.Salary / 12),
		},
	}
}

// fail records a failed mutating action and returns its result.
func (e *Engine) fail(ctx context.Context, sessionID, userID string, intent domain.Intent, details domain.ActionDetails, err error) domain.CommandResult {
	msg := domain.UserMessage(err, "The action could not be completed.")
	e.audit.Record(ctx, sessionID, userID, intent, details, false, msg)
	e.logger.Info("command failed", "intent", intent, "session_id", sessionID, "error", err)
	return domain.Failed(msg)
}

func employeeNotFound(name string) error {
	return domain.NotFoundf("Could not find employee %q. Please check the spelling.", name)
}

// notFoundOr maps a directory miss onto the user-facing not-found error.
func notFoundOr(err error, name string) error {
	if errors.Is(err, directory.ErrEmployeeNotFound) {
		return employeeNotFound(name)
	}
	return err
}
