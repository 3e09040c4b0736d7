package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "**********6789", MaskNumber("12345678906789"))
	assert.Equal(t, "1234", MaskNumber("1234"))
	assert.Equal(t, "12", MaskNumber("12"))
	assert.Equal(t, "", MaskNumber(""))
}

func TestAccountGates(t *testing.T) {
	pending := &Account{Status: StatusPending}
	assert.True(t, pending.IsPending())
	assert.False(t, pending.CanBeUsedForPayout())

	verified := &Account{Status: StatusVerified}
	assert.False(t, verified.IsPending())
	assert.True(t, verified.CanBeUsedForPayout())

	for _, status := range []Status{StatusRejected, StatusSuspended} {
		a := &Account{Status: status}
		assert.False(t, a.CanBeUsedForPayout(), "status %s", status)
	}
}

func TestMaskedAccountNumber(t *testing.T) {
	a := &Account{AccountNumber: "987654321012"}
	assert.Equal(t, "********1012", a.MaskedAccountNumber())
}
