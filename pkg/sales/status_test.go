package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.Has(StateNew, "pending"))
	assert.False(t, c.Has(StateNew, "processing"))
	assert.True(t, c.Has(StatePaymentReview, "fraud"))
	assert.Equal(t, []string{"processing"}, c.StateStatuses(StateProcessing))
}

func TestNewCatalog(t *testing.T) {
	assert.Equal(t, DefaultCatalog(), NewCatalog(nil))

	src := map[string][]string{StateNew: {"pending", "processing"}}
	c := NewCatalog(src)
	src[StateNew][0] = "mutated"

	assert.True(t, c.Has(StateNew, "pending"), "catalog must not alias its input")
	assert.True(t, c.Has(StateNew, "processing"))
	assert.False(t, c.Has(StateComplete, "complete"))
}

func TestStateStatuses(t *testing.T) {
	c := StatusCatalog{StateNew: {"pending", "fraud_check", "pending"}}

	assert.Equal(t, []string{"fraud_check", "pending"}, c.StateStatuses(StateNew))
	assert.Empty(t, c.StateStatuses(StateClosed))

	var empty StatusCatalog
	assert.False(t, empty.Has(StateNew, "pending"))
}
