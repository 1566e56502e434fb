package directory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() Seed {
	return Seed{
		Employees: []domain.Employee{
			{ID: "emp_001", Name: "Sarah Chen", Team: "engineering", Title: "Engineer", Salary: 100000, Status: domain.StatusActive},
			{ID: "emp_007", Name: "Alex Kim", Team: "platform", Title: "SRE", Salary: 90000, Status: domain.StatusActive},
			{ID: "emp_003", Name: "Maria Lopez", Team: "design", Title: "Designer", Salary: 70000, Status: domain.StatusTerminated},
		},
		Teams: []domain.Team{
			{ID: "team_001", Name: "engineering", Department: "Technology", Manager: "Priya Raman"},
		},
		Countries: []domain.Country{
			{Code: "CA", Name: "Canada", Supported: true},
			{Code: "CU", Name: "Cuba", Supported: true, Embargoed: true},
			{Code: "NG", Name: "Nigeria"},
		},
	}
}

func TestLookupsAreCaseInsensitive(t *testing.T) {
	d := New(testSeed())

	e, ok := d.EmployeeByName("sarah CHEN")
	require.True(t, ok)
	assert.Equal(t, "emp_001", e.ID)

	_, ok = d.EmployeeByName("Sarah")
	assert.False(t, ok, "lookup is exact, not partial")

	team, ok := d.TeamByName("Engineering")
	require.True(t, ok)
	assert.Equal(t, "Priya Raman", team.Manager)

	assert.Len(t, d.FindEmployeesByPartialName("LO"), 1)
}

func TestIsCountrySupported(t *testing.T) {
	d := New(testSeed())
	assert.True(t, d.IsCountrySupported("canada"))
	assert.True(t, d.IsCountrySupported("CA"))
	assert.False(t, d.IsCountrySupported("Cuba"), "embargoed")
	assert.False(t, d.IsCountrySupported("Nigeria"), "not supported")
	assert.False(t, d.IsCountrySupported("Atlantis"), "unknown")
}

func TestGenerateEmployeeIDUsesMaxSuffix(t *testing.T) {
	d := New(testSeed())
	assert.Equal(t, "emp_008", d.GenerateEmployeeID(), "ids were inserted out of order")

	require.NoError(t, d.DeleteEmployee("emp_007"))
	assert.Equal(t, "emp_008", d.GenerateEmployeeID(), "deleted ids stay reserved")
}

func TestInsertAfterDeletingNewestHireDoesNotReuseID(t *testing.T) {
	d := New(testSeed())

	first, err := d.InsertEmployee(domain.Employee{Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "emp_008", first.ID)
	require.NoError(t, d.DeleteEmployee(first.ID))

	second, err := d.InsertEmployee(domain.Employee{Name: "Grace Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "emp_009", second.ID)

	require.NoError(t, d.AddEmployee(domain.Employee{ID: "emp_050", Name: "Imported"}))
	require.NoError(t, d.DeleteEmployee("emp_050"))
	third, err := d.InsertEmployee(domain.Employee{Name: "Katherine Johnson"})
	require.NoError(t, err)
	assert.Equal(t, "emp_051", third.ID)
}

func TestInsertEmployeeIsMonotonicAfterDeletes(t *testing.T) {
	d := New(testSeed())
	seen := map[string]bool{}
	maxSuffix := 7

	for i := 0; i < 5; i++ {
		e, err := d.InsertEmployee(domain.Employee{Name: fmt.Sprintf("New Hire %d", i)})
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true

		var n int
		_, err = fmt.Sscanf(e.ID, "emp_%d", &n)
		require.NoError(t, err)
		assert.Greater(t, n, maxSuffix)
		maxSuffix = n

		if i == 2 {
			require.NoError(t, d.DeleteEmployee("emp_001"))
		}
	}
}

func TestInsertEmployeeRejectsDuplicateName(t *testing.T) {
	d := New(testSeed())
	before := d.Count()

	_, err := d.InsertEmployee(domain.Employee{Name: "maria lopez"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, before, d.Count())
}

func TestConcurrentInsertsGetDistinctIDs(t *testing.T) {
	d := New(testSeed())
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := d.InsertEmployee(domain.Employee{Name: fmt.Sprintf("Worker %d", i)})
			if err == nil {
				ids <- e.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestUpdateEmployee(t *testing.T) {
	d := New(testSeed())
	title := "Staff Engineer"

	updated, err := d.UpdateEmployee("emp_001", domain.EmployeePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", updated.Title)
	assert.Equal(t, 100000.0, updated.Salary)

	stored, _ := d.EmployeeByID("emp_001")
	assert.Equal(t, "Staff Engineer", stored.Title)

	_, err = d.UpdateEmployee("emp_999", domain.EmployeePatch{Title: &title})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestModifyEmployeeLeavesRecordOnError(t *testing.T) {
	d := New(testSeed())
	boom := errors.New("boom")

	_, err := d.ModifyEmployee("emp_001", func(e *domain.Employee) error {
		e.Title = "Changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, _ := d.EmployeeByID("emp_001")
	assert.Equal(t, "Engineer", stored.Title)
}

func TestAddEmployeeRejectsDuplicates(t *testing.T) {
	d := New(testSeed())
	assert.Error(t, d.AddEmployee(domain.Employee{ID: "emp_001", Name: "Someone"}))
	assert.Error(t, d.AddEmployee(domain.Employee{ID: "emp_050", Name: "ALEX KIM"}))
	assert.NoError(t, d.AddEmployee(domain.Employee{ID: "emp_050", Name: "Someone"}))
	assert.Equal(t, "emp_051", d.GenerateEmployeeID())
}

func TestDefaultSeedLoads(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	assert.NotEmpty(t, seed.Employees)
	assert.NotEmpty(t, seed.Teams)
	assert.NotEmpty(t, seed.Countries)

	d := New(seed)
	assert.True(t, d.IsCountrySupported("Canada"))
	_, ok := d.TeamByName("engineering")
	assert.True(t, ok)
}

func TestLoadSeedFromDirOverridesTables(t *testing.T) {
	dir := t.TempDir()
	teams := "- id: team_x\n  name: research\n  department: R&D\n  manager: Grace Hopper\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.yaml"), []byte(teams), 0o600))

	seed, err := LoadSeed(dir)
	require.NoError(t, err)
	require.Len(t, seed.Teams, 1)
	assert.Equal(t, "research", seed.Teams[0].Name)
	assert.NotEmpty(t, seed.Employees, "missing files fall back to the embedded tables")
}

func TestLoadSeedRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "countries.yaml"), []byte("{not: [valid"), 0o600))

	_, err := LoadSeed(dir)
	assert.Error(t, err)
}
