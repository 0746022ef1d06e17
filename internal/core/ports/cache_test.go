package ports_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammerola/mfg-erp/internal/core/ports"
)

func TestCacheKeyPrefix(t *testing.T) {
	assert.Equal(t, "prod:42", ports.PrefixProduct.Key("42"))
	assert.Equal(t, "dash", ports.PrefixDashboard.Key())
	assert.Equal(t, "alert:3:1", ports.PrefixAlert.Key("3", "1"))
	assert.Equal(t, "dash:*", ports.PrefixDashboard.Pattern())
}
