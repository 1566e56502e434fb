package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SEED_DIR", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "hr.db"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEmployeesCommand(t *testing.T) {
	out, _, err := executeCLI(t, "", "employees", "--team", "Engineering")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Sarah Chen")
	assert.NotContains(t, out, "Maria Lopez")

	out, _, err = executeCLI(t, "", "employees", "--json")
	require.NoError(t, err)
	var employees []domain.Employee
	require.NoError(t, json.Unmarshal([]byte(out), &employees))
	assert.NotEmpty(t, employees)
}

func TestTeamsCommand(t *testing.T) {
	out, _, err := executeCLI(t, "", "teams")
	require.NoError(t, err)
	assert.Contains(t, out, "engineering")
	assert.Contains(t, out, "Priya Raman")
}

func TestChatCommandConfirmsBonus(t *testing.T) {
	out, _, err := executeCLI(t, "Give Sarah Chen a $1,000 bonus\ny\nquit\n", "chat", "--no-archive")
	require.NoError(t, err)
	assert.Contains(t, out, "[y/n]")
	assert.Contains(t, out, "Bonus approved for Sarah Chen!")
}

func TestChatCommandDecline(t *testing.T) {
	out, _, err := executeCLI(t, "Give Sarah Chen a $1,000 bonus\nno\n", "chat", "--no-archive")
	require.NoError(t, err)
	assert.Contains(t, out, "The action has been cancelled.")
}

func TestChatCommandArchivesActions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chat.db")
	t.Setenv("DB_PATH", dbPath)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetIn(strings.NewReader("Give Sarah Chen a $250 bonus\nyes\n"))
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"chat"})
	require.NoError(t, root.Execute())

	out, _, err := executeCLI(t, "", "history", "--db", dbPath, "--action", "give_bonus")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Chen")
}

func TestHistoryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	repo, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SaveActionLog(ctx, domain.ActionLog{
		ID: "log-1", SessionID: "s1", UserID: "u1", Action: domain.IntentGiveBonus,
		Details: domain.ActionDetails{EmployeeName: "Sarah Chen", Amount: 1000}, Timestamp: at, Success: true,
	}))
	require.NoError(t, repo.SaveActionLog(ctx, domain.ActionLog{
		ID: "log-2", SessionID: "s2", UserID: "u1", Action: domain.IntentTerminateEmployee,
		Details: domain.ActionDetails{EmployeeName: "Alex Kim"}, Timestamp: at.Add(time.Minute), Success: true,
	}))
	require.NoError(t, repo.Close())

	out, _, err := executeCLI(t, "", "history", "--db", dbPath, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Chen")
	assert.NotContains(t, out, "Alex Kim")

	out, _, err = executeCLI(t, "", "history", "--db", dbPath, "--json")
	require.NoError(t, err)
	var logs []domain.ActionLog
	require.NoError(t, json.Unmarshal([]byte(out), &logs))
	assert.Len(t, logs, 2)

	_, _, err = executeCLI(t, "", "history", "--db", dbPath, "--action", "view_teams")
	assert.Error(t, err)

	out, _, err = executeCLI(t, "", "history", "--db", dbPath, "--session", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "No actions recorded.")
}

func TestExtractorParseCommand(t *testing.T) {
	out, _, err := executeCLI(t, "", "extractor", "parse", "Give Sarah Chen a $1,000 bonus")
	require.NoError(t, err)
	var res struct {
		Intent domain.Intent `json:"intent"`
		Slots  domain.Slots  `json:"slots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.IntentGiveBonus, res.Intent)
	assert.Equal(t, "Sarah Chen", res.Slots["name"])
}

func TestParseDecision(t *testing.T) {
	for in, want := range map[string]bool{"y": true, "YES": true, "n": false, "cancel": false} {
		got, ok := parseDecision(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := parseDecision("maybe")
	assert.False(t, ok)
}
