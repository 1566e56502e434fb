package directory

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/ashureev/hr-assistant/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFS embed.FS

const (
	employeesFile = "employees.yaml"
	teamsFile     = "teams.yaml"
	countriesFile = "countries.yaml"
)

// Seed is the static record set a Directory is bootstrapped from.
type Seed struct {
	Employees []domain.Employee
	Teams     []domain.Team
	Countries []domain.Country
}

// DefaultSeed returns the record set embedded in the binary.
func DefaultSeed() (Seed, error) {
	return loadSeedFS(seedFS, "seed")
}

// LoadSeed reads employees.yaml, teams.yaml and countries.yaml from dir.
// An empty dir selects the embedded seed. Missing files in dir fall back to
// the embedded table of the same name.
func LoadSeed(dir string) (Seed, error) {
	if dir == "" {
		return DefaultSeed()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Seed{}, fmt.Errorf("directory: stat seed dir: %w", err)
	}
	if !info.IsDir() {
		return Seed{}, fmt.Errorf("directory: seed path %s is not a directory", dir)
	}

	fallback, err := DefaultSeed()
	if err != nil {
		return Seed{}, err
	}
	custom := os.DirFS(dir)

	var seed Seed
	if seed.Employees, err = decodeOr(custom, employeesFile, fallback.Employees); err != nil {
		return Seed{}, err
	}
	if seed.Teams, err = decodeOr(custom, teamsFile, fallback.Teams); err != nil {
		return Seed{}, err
	}
	if seed.Countries, err = decodeOr(custom, countriesFile, fallback.Countries); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func loadSeedFS(fsys fs.FS, root string) (Seed, error) {
	var seed Seed
	if err := decodeFile(fsys, path.Join(root, employeesFile), &seed.Employees); err != nil {
		return Seed{}, err
	}
	if err := decodeFile(fsys, path.Join(root, teamsFile), &seed.Teams); err != nil {
		return Seed{}, err
	}
	if err := decodeFile(fsys, path.Join(root, countriesFile), &seed.Countries); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func decodeOr[T any](fsys fs.FS, name string, fallback []T) ([]T, error) {
	var out []T
	err := decodeFile(fsys, name, &out)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeFile(fsys fs.FS, name string, target any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("directory: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, target); err != nil {
		return fmt.Errorf("directory: parse %s: %w", name, err)
	}
	return nil
}
