// Package directory is the in-memory employee, team and country store.
package directory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ashureev/hr-assistant/internal/domain"
	"golang.org/x/text/cases"
)

const employeeIDPrefix = "emp_"

var (
	ErrEmployeeNotFound  = fmt.Errorf("directory: employee %w", domain.ErrNotFound)
	ErrDuplicateEmployee = fmt.Errorf("directory: employee %w", domain.ErrConflict)
	ErrInvalidEmployee   = fmt.Errorf("directory: employee %w", domain.ErrValidation)
)

var numericSuffix = regexp.MustCompile(`(\d+)$`)

// Directory holds the Employee, Team and Country tables.
// All tables share one lock: id generation reads the whole employee table
// and must not interleave with inserts.
type Directory struct {
	mu        sync.RWMutex
	employees []domain.Employee
	teams     []domain.Team
	countries []domain.Country
	// maxSuffix is the highest employee id suffix ever stored. Deletions
	// do not lower it, so ids are never reused.
	maxSuffix int
}

// New creates a Directory populated from seed. The seed slices are copied.
func New(seed Seed) *Directory {
	d := &Directory{
		employees: append([]domain.Employee(nil), seed.Employees...),
		teams:     append([]domain.Team(nil), seed.Teams...),
		countries: append([]domain.Country(nil), seed.Countries...),
	}
	for _, e := range d.employees {
		d.noteIDLocked(e.ID)
	}
	return d
}

// foldKey returns the case-insensitive lookup key for a name.
// Casers are stateful, so one is built per call.
func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Employees returns a snapshot of all employees in insertion order.
func (d *Directory) Employees() []domain.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Employee(nil), d.employees...)
}

// Count returns the number of employees of any status.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.employees)
}

// EmployeeByName finds an employee by exact, case-insensitive name.
func (d *Directory) EmployeeByName(name string) (domain.Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexByNameLocked(name); i >= 0 {
		return d.employees[i], true
	}
	return domain.Employee{}, false
}

// EmployeeByID finds an employee by id.
func (d *Directory) EmployeeByID(id string) (domain.Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexByIDLocked(id); i >= 0 {
		return d.employees[i], true
	}
	return domain.Employee{}, false
}

// FindEmployeesByPartialName returns employees whose name contains fragment,
// ignoring case.
func (d *Directory) FindEmployeesByPartialName(fragment string) []domain.Employee {
	key := foldKey(fragment)
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []domain.Employee
	for _, e := range d.employees {
		if strings.Contains(foldKey(e.Name), key) {
			out = append(out, e)
		}
	}
	return out
}

// AddEmployee stores e as-is. The id and name must both be unused.
func (d *Directory) AddEmployee(e domain.Employee) error {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidEmployee)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexByIDLocked(e.ID) >= 0 {
		return fmt.Errorf("%w: id %s already exists", ErrDuplicateEmployee, e.ID)
	}
	if d.indexByNameLocked(e.Name) >= 0 {
		return fmt.Errorf("%w: name %s already exists", ErrDuplicateEmployee, e.Name)
	}
	d.employees = append(d.employees, e)
	d.noteIDLocked(e.ID)
	return nil
}

// InsertEmployee assigns a fresh id to e and stores it. Id generation, the
// duplicate-name check and the insert happen under one write lock.
func (d *Directory) InsertEmployee(e domain.Employee) (domain.Employee, error) {
	if strings.TrimSpace(e.Name) == "" {
		return domain.Employee{}, fmt.Errorf("%w: name is required", ErrInvalidEmployee)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexByNameLocked(e.Name) >= 0 {
		return domain.Employee{}, fmt.Errorf("%w: name %s already exists", ErrDuplicateEmployee, e.Name)
	}
	e.ID = d.nextIDLocked()
	d.employees = append(d.employees, e)
	d.noteIDLocked(e.ID)
	return e, nil
}

// UpdateEmployee applies patch to the employee with the given id and
// returns the updated record. Unknown ids yield ErrEmployeeNotFound.
func (d *Directory) UpdateEmployee(id string, patch domain.EmployeePatch) (domain.Employee, error) {
	return d.ModifyEmployee(id, func(e *domain.Employee) error {
		patch.Apply(e)
		return nil
	})
}

// ModifyEmployee runs fn against a copy of the employee under the write lock
// and stores the copy only if fn succeeds.
func (d *Directory) ModifyEmployee(id string, fn func(*domain.Employee) error) (domain.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexByIDLocked(id)
	if i < 0 {
		return domain.Employee{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	updated := d.employees[i]
	if err := fn(&updated); err != nil {
		return domain.Employee{}, err
	}
	updated.ID = d.employees[i].ID
	d.employees[i] = updated
	return updated, nil
}

// DeleteEmployee removes the employee with the given id.
func (d *Directory) DeleteEmployee(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexByIDLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	d.employees = append(d.employees[:i], d.employees[i+1:]...)
	return nil
}

// GenerateEmployeeID returns an id whose numeric suffix is greater than
// every suffix stored so far, including those of deleted employees.
func (d *Directory) GenerateEmployeeID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nextIDLocked()
}

func (d *Directory) nextIDLocked() string {
	maxID := d.maxSuffix
	for _, e := range d.employees {
		if n, ok := idSuffix(e.ID); ok && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("%s%03d", employeeIDPrefix, maxID+1)
}

func (d *Directory) noteIDLocked(id string) {
	if n, ok := idSuffix(id); ok && n > d.maxSuffix {
		d.maxSuffix = n
	}
}

func idSuffix(id string) (int, bool) {
	m := numericSuffix.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (d *Directory) indexByIDLocked(id string) int {
	for i, e := range d.employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) indexByNameLocked(name string) int {
	key := foldKey(name)
	if key == "" {
		return -1
	}
	for i, e := range d.employees {
		if foldKey(e.Name) == key {
			return i
		}
	}
	return -1
}

// Teams returns a snapshot of all teams.
func (d *Directory) Teams() []domain.Team {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Team(nil), d.teams...)
}

// TeamByName finds a team by exact, case-insensitive name.
func (d *Directory) TeamByName(name string) (domain.Team, bool) {
	key := foldKey(name)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.teams {
		if foldKey(t.Name) == key {
			return t, true
		}
	}
	return domain.Team{}, false
}

// TeamNames lists team names in table order.
func (d *Directory) TeamNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.teams))
	for _, t := range d.teams {
		names = append(names, t.Name)
	}
	return names
}

// Countries returns a snapshot of all countries.
func (d *Directory) Countries() []domain.Country {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Country(nil), d.countries...)
}

// CountryByName finds a country by case-insensitive name or ISO code.
func (d *Directory) CountryByName(name string) (domain.Country, bool) {
	key := foldKey(name)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.countries {
		if foldKey(c.Name) == key || foldKey(c.Code) == key {
			return c, true
		}
	}
	return domain.Country{}, false
}

// IsCountrySupported reports whether hiring is allowed in the named country.
// Unknown countries are not supported.
func (d *Directory) IsCountrySupported(name string) bool {
	c, ok := d.CountryByName(name)
	return ok && c.Hireable()
}
