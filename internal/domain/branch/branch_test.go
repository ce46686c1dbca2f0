package branch

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		branch     Branch
		wantFields []string
	}{
		{
			name:   "valid",
			branch: Branch{ID: uuid.New(), Name: "Downtown", City: "Sao Paulo"},
		},
		{
			name:       "missing everything",
			branch:     Branch{},
			wantFields: []string{"id", "name"},
		},
		{
			name:       "name too long",
			branch:     Branch{ID: uuid.New(), Name: strings.Repeat("b", 101)},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := tt.branch.Validate()
			fields := make([]string, len(vs))
			for i, v := range vs {
				fields[i] = v.Field
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
