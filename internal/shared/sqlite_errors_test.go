package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSQLiteConflictError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy message", errors.New("SQLITE_BUSY: cannot commit"), true},
		{"locked message", fmt.Errorf("save action log: %w", errors.New("database is locked (5)")), true},
		{"other", errors.New("no such table: action_logs"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsSQLiteConflictError(c.err))
		})
	}
}
