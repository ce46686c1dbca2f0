package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasScope(t *testing.T) {
	key := &APIKeyInfo{
		ID:     "k1",
		Scopes: []string{"read_only", ScopeManageOrders},
	}

	assert.True(t, key.HasScope(ScopeManageOrders))
	assert.True(t, key.HasScope("read_only"))
	assert.False(t, key.HasScope("admin"))

	empty := &APIKeyInfo{ID: "k2"}
	assert.False(t, empty.HasScope(ScopeManageOrders))
}
