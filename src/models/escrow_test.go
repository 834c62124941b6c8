package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscrowStatusIsTerminal(t *testing.T) {
	assert.False(t, EscrowPending.IsTerminal())
	assert.False(t, EscrowFunded.IsTerminal())
	assert.True(t, EscrowReleased.IsTerminal())
	assert.True(t, EscrowRefunded.IsTerminal())
	assert.True(t, EscrowDisputed.IsTerminal())
}

func TestActiveEscrowStatuses(t *testing.T) {
	active := ActiveEscrowStatuses()

	assert.ElementsMatch(t, []EscrowStatus{EscrowPending, EscrowFunded}, active)
	for _, s := range active {
		assert.False(t, s.IsTerminal(), "status %s", s)
	}
}
