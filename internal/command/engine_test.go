package command

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/directory"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

func newTestEngine(t *testing.T) (*Engine, *directory.Directory, *audit.Log) {
	t.Helper()
	dir := directory.New(directory.Seed{
		Employees: []domain.Employee{
			{ID: "emp_001", Name: "Sarah Chen", Team: "engineering", Country: "United States", Title: "Senior Engineer",
				Salary: 100000, Currency: "USD", Manager: "Priya Raman", StartDate: "2022-01-10", Status: domain.StatusActive},
			{ID: "emp_002", Name: "Alex Kim", Team: "platform", Country: "Canada", Title: "SRE",
				Salary: 90000, Currency: "USD", Manager: "Marcus Webb", StartDate: "2023-05-01", Status: domain.StatusActive},
			{ID: "emp_003", Name: "Lucas Silva", Team: "platform", Country: "Brazil", Title: "Engineer",
				Salary: 70000, Currency: "USD", Manager: "Marcus Webb", StartDate: "2021-02-01", Status: domain.StatusTerminated},
		},
		Teams: []domain.Team{
			{ID: "team_001", Name: "engineering", Department: "Technology", Manager: "Priya Raman"},
			{ID: "team_002", Name: "platform", Department: "Technology", Manager: "Marcus Webb"},
		},
		Countries: []domain.Country{
			{Code: "CA", Name: "Canada", Supported: true},
			{Code: "US", Name: "United States", Supported: true},
			{Code: "CU", Name: "Cuba", Supported: true, Embargoed: true},
			{Code: "NG", Name: "Nigeria"},
		},
	})
	log := audit.New()
	clock := stubClock{now: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)}
	return NewEngine(dir, log, WithClock(clock)), dir, log
}

func execute(t *testing.T, e *Engine, sessionID string, intent domain.Intent, slots domain.Slots) domain.CommandResult {
	t.Helper()
	res, err := e.Execute(context.Background(), Request{Intent: intent, Slots: slots, SessionID: sessionID, UserID: "demo_user"})
	require.NoError(t, err)
	return res
}

func TestHireAppliesDefaults(t *testing.T) {
	e, dir, log := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{
		"name": "Ada Lovelace", "team": "Engineering", "country": "canada",
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Successfully hired Ada Lovelace!", res.Message)
	assert.Equal(t, "emp_004", res.Data["employeeId"])

	ada, ok := dir.EmployeeByName("Ada Lovelace")
	require.True(t, ok)
	assert.Equal(t, domain.StatusActive, ada.Status)
	assert.Equal(t, 80000.0, ada.Salary)
	assert.Equal(t, "USD", ada.Currency)
	assert.Equal(t, "Software Engineer", ada.Title)
	assert.Equal(t, "Priya Raman", ada.Manager)
	assert.Equal(t, "engineering", ada.Team)
	assert.Equal(t, "Canada", ada.Country)
	assert.Equal(t, "2026-03-11", ada.StartDate)

	logs := log.All()
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Equal(t, domain.IntentHireEmployee, logs[0].Action)
	assert.Equal(t, "s1", logs[0].SessionID)
	assert.Equal(t, "emp_004", logs[0].Details.EmployeeID)
}

func TestHireDuplicateNameFails(t *testing.T) {
	e, dir, log := newTestEngine(t)
	before := dir.Count()

	res := execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{"name": "sarah chen", "team": "engineering", "country": "Canada"})
	assert.False(t, res.Success)
	assert.Equal(t, "sarah chen is already employed in our system.", res.Message)
	assert.Equal(t, before, dir.Count())

	res = execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{"name": "Lucas Silva", "team": "engineering", "country": "Canada"})
	assert.False(t, res.Success, "terminated employees still block a rehire by name")
	assert.Equal(t, before, dir.Count())

	logs := log.All()
	require.Len(t, logs, 2)
	assert.False(t, logs[0].Success)
	assert.Equal(t, res.Message, logs[1].ErrorMessage)
}

func TestHireRejectsUnknownTeamAndUnhireableCountry(t *testing.T) {
	e, dir, log := newTestEngine(t)
	before := dir.Count()

	res := execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{"name": "Ada", "team": "research", "country": "Canada"})
	assert.False(t, res.Success)
	assert.Equal(t, `Team "research" does not exist. Available teams: engineering, platform.`, res.Message)

	for _, country := range []string{"Cuba", "Nigeria", "Atlantis"} {
		res = execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{"name": "Ada", "team": "platform", "country": country})
		assert.False(t, res.Success, country)
		assert.Contains(t, res.Message, "We cannot hire in "+country)
	}

	assert.Equal(t, before, dir.Count())
	assert.Equal(t, 4, log.Len())
}

func TestHireIDsAreMonotonic(t *testing.T) {
	e, dir, _ := newTestEngine(t)
	maxSuffix := 3
	seen := map[string]bool{}

	for i := 0; i < 6; i++ {
		res := execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{
			"name": fmt.Sprintf("Hire %d", i), "team": "platform", "country": "Canada",
		})
		require.True(t, res.Success, res.Message)
		id := res.Data["employeeId"].(string)
		assert.False(t, seen[id])
		seen[id] = true

		var n int
		_, err := fmt.Sscanf(id, "emp_%d", &n)
		require.NoError(t, err)
		assert.Greater(t, n, maxSuffix)
		maxSuffix = n

		if i == 3 {
			require.NoError(t, dir.DeleteEmployee("emp_002"))
		}
	}
}

func TestBonusWarningThreshold(t *testing.T) {
	e, dir, _ := newTestEngine(t)
	before, _ := dir.EmployeeByName("Sarah Chen")

	res := execute(t, e, "s1", domain.IntentGiveBonus, domain.Slots{"name": "Sarah Chen", "amount": 30000.0})
	require.True(t, res.Success)
	assert.Empty(t, res.Warnings, "exactly 30% is not above the threshold")

	res = execute(t, e, "s1", domain.IntentGiveBonus, domain.Slots{"name": "Sarah Chen", "amount": 30001.0})
	require.True(t, res.Success)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "This bonus ($30,001) is more than 30% of Sarah Chen's annual salary.", res.Warnings[0])
	assert.Equal(t, "performance", res.Data["bonusType"])

	after, _ := dir.EmployeeByName("Sarah Chen")
	assert.Equal(t, before, after, "bonuses do not change the employee record")
}

func TestBonusUnknownEmployeeIsAudited(t *testing.T) {
	e, _, log := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentGiveBonus, domain.Slots{"name": "Nobody", "amount": 500.0})
	assert.False(t, res.Success)
	assert.Equal(t, `Could not find employee "Nobody". Please check the spelling.`, res.Message)

	logs := log.All()
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "Nobody", logs[0].Details.EmployeeName)
}

func TestChangeTitleRecordsOldTitle(t *testing.T) {
	e, dir, log := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentChangeTitle, domain.Slots{"name": "alex kim", "newTitle": "Staff SRE"})
	require.True(t, res.Success)
	assert.Equal(t, "Title updated for Alex Kim!", res.Message)
	assert.Equal(t, "SRE", res.Data["oldTitle"])
	assert.Equal(t, "Staff SRE", res.Data["newTitle"])
	assert.Equal(t, "2026-03-11", res.Data["effectiveDate"])

	alex, _ := dir.EmployeeByName("Alex Kim")
	assert.Equal(t, "Staff SRE", alex.Title)

	entry := log.All()[0]
	assert.Equal(t, "SRE", entry.Details.FromValue)
	assert.Equal(t, "Staff SRE", entry.Details.ToValue)
}

func TestTerminationIsOneWay(t *testing.T) {
	e, dir, log := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentTerminateEmployee, domain.Slots{"name": "Sarah Chen"})
	require.True(t, res.Success)
	assert.Equal(t, "Termination processed for Sarah Chen.", res.Message)
	assert.Equal(t, "2026-03-11", res.Data["terminationDate"])
	assert.Equal(t, 8333.0, res.Data["finalPay"])
	assert.Equal(t, "Not specified", res.Data["reason"])

	res = execute(t, e, "s1", domain.IntentTerminateEmployee, domain.Slots{"name": "Sarah Chen", "termDate": "tomorrow"})
	assert.False(t, res.Success)
	assert.Equal(t, "Sarah Chen has already been terminated.", res.Message)

	sarah, _ := dir.EmployeeByName("Sarah Chen")
	assert.Equal(t, domain.StatusTerminated, sarah.Status)

	logs := log.All()
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Success)
	assert.False(t, logs[1].Success)
	assert.Equal(t, "Sarah Chen has already been terminated.", logs[1].ErrorMessage)
}

func TestValidationFailuresAreNotAudited(t *testing.T) {
	e, dir, log := newTestEngine(t)
	before := dir.Count()

	res := execute(t, e, "s1", domain.IntentGiveBonus, domain.Slots{"name": "Sarah Chen"})
	assert.False(t, res.Success)
	res = execute(t, e, "s1", domain.IntentHireEmployee, domain.Slots{"name": "Ada"})
	assert.False(t, res.Success)
	res = execute(t, e, "s1", domain.IntentUnknown, nil)
	assert.False(t, res.Success)

	assert.Equal(t, 0, log.Len())
	assert.Equal(t, before, dir.Count())
}

func TestReadOnlyIntentsAreNotAudited(t *testing.T) {
	e, dir, log := newTestEngine(t)
	before := dir.Employees()

	for _, intent := range []domain.Intent{
		domain.IntentViewEmployees, domain.IntentViewTeams, domain.IntentViewHistory,
		domain.IntentViewGlobalHistory, domain.IntentHelp,
	} {
		res := execute(t, e, "s1", intent, nil)
		assert.True(t, res.Success, intent)
		assert.NotEmpty(t, res.Message, intent)
	}
	res := execute(t, e, "s1", domain.IntentViewEmployee, domain.Slots{"name": "sarah"})
	require.True(t, res.Success, "a unique partial match is accepted")
	assert.Contains(t, res.Message, "**Sarah Chen** (emp_001)")
	assert.Contains(t, res.Message, "Salary: $100,000 USD")

	assert.Equal(t, 0, log.Len())
	assert.Equal(t, before, dir.Employees())
}

func TestViewEmployeesByTeam(t *testing.T) {
	e, _, _ := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentViewEmployees, domain.Slots{"team": "Platform"})
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data["count"])
	assert.Contains(t, res.Message, "• Alex Kim - SRE, platform team, Canada (active)")

	res = execute(t, e, "s1", domain.IntentViewEmployees, domain.Slots{"team": "research"})
	assert.False(t, res.Success)
}

func TestViewTeamsCountsActiveEmployees(t *testing.T) {
	e, _, _ := newTestEngine(t)

	res := execute(t, e, "s1", domain.IntentViewTeams, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "We have 2 teams:")
	assert.Contains(t, res.Message, "• platform (Technology) - managed by Marcus Webb, 1 active employees")
}

func TestAuditCompleteness(t *testing.T) {
	e, _, log := newTestEngine(t)

	steps := []struct {
		session string
		intent  domain.Intent
		slots   domain.Slots
		success bool
	}{
		{"a", domain.IntentHireEmployee, domain.Slots{"name": "Ada Lovelace", "team": "engineering", "country": "Canada"}, true},
		{"b", domain.IntentHireEmployee, domain.Slots{"name": "Ada Lovelace", "team": "engineering", "country": "Canada"}, false},
		{"a", domain.IntentGiveBonus, domain.Slots{"name": "Ada Lovelace", "amount": 1000.0}, true},
		{"b", domain.IntentChangeTitle, domain.Slots{"name": "Ghost", "newTitle": "Lead"}, false},
		{"a", domain.IntentTerminateEmployee, domain.Slots{"name": "Lucas Silva"}, false},
		{"b", domain.IntentTerminateEmployee, domain.Slots{"name": "Alex Kim", "termDate": "end of month"}, true},
		{"a", domain.IntentViewHistory, nil, true},
	}

	mutating := 0
	for _, s := range steps {
		res := execute(t, e, s.session, s.intent, s.slots)
		assert.Equal(t, s.success, res.Success, "%s %v: %s", s.intent, s.slots, res.Message)
		if s.intent.Mutating() {
			mutating++
		}
	}

	all := log.All()
	require.Len(t, all, mutating)
	i := 0
	for _, s := range steps {
		if !s.intent.Mutating() {
			continue
		}
		assert.Equal(t, s.intent, all[i].Action)
		assert.Equal(t, s.success, all[i].Success)
		assert.Equal(t, s.session, all[i].SessionID)
		i++
	}

	sessionA := log.SessionLogs("a")
	require.Len(t, sessionA, 3)
	assert.Equal(t, domain.IntentHireEmployee, sessionA[0].Action)
	assert.Equal(t, domain.IntentGiveBonus, sessionA[1].Action)
	assert.Equal(t, domain.IntentTerminateEmployee, sessionA[2].Action)
	assert.Equal(t, "2026-03-31", log.SessionLogs("b")[2].Details.TerminationDate)
}

func TestViewHistoryIsSessionScoped(t *testing.T) {
	e, _, _ := newTestEngine(t)
	execute(t, e, "a", domain.IntentGiveBonus, domain.Slots{"name": "Sarah Chen", "amount": 500.0})
	execute(t, e, "b", domain.IntentGiveBonus, domain.Slots{"name": "Alex Kim", "amount": 700.0})

	res := execute(t, e, "a", domain.IntentViewHistory, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "Gave Sarah Chen a $500 bonus")
	assert.NotContains(t, res.Message, "Alex Kim")

	res = execute(t, e, "c", domain.IntentViewHistory, nil)
	assert.Equal(t, "No actions have been recorded in this session yet.", res.Message)

	res = execute(t, e, "c", domain.IntentViewGlobalHistory, nil)
	assert.Equal(t, 2, strings.Count(res.Message, "✅"))
}

func TestExecuteRecoversFromPanics(t *testing.T) {
	e := NewEngine(nil, audit.New())

	res, err := e.Execute(context.Background(), Request{Intent: domain.IntentViewTeams, SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.False(t, res.Success)
	assert.Equal(t, InternalErrorMessage, res.Message)
}
