package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateUnknown, StateDNSNeeded},
		{StateUnknown, StateReady},
		{StateUnknown, StateOnHold},
		{StateDNSNeeded, StateReady},
		{StateDNSNeeded, StateOnHold},
		{StateDNSNeeded, StateDeleted},
		{StateReady, StateDNSNeeded},
		{StateReady, StateOnHold},
		{StateOnHold, StateReady},
		{StateOnHold, StateDNSNeeded},
		{StateOnHold, StateDeleted},
	}
	for _, tc := range allowed {
		assert.True(t, canTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	forbidden := []struct{ from, to State }{
		{StateReady, StateDeleted},
		{StateUnknown, StateDeleted},
		{StateDeleted, StateReady},
		{StateDeleted, StateDNSNeeded},
		{StateDeleted, StateOnHold},
	}
	for _, tc := range forbidden {
		assert.False(t, canTransition(tc.from, tc.to), "%s -> %s should be forbidden", tc.from, tc.to)
	}
}

func TestIsActive(t *testing.T) {
	active := map[State]bool{
		StateUnknown:   false,
		StateDNSNeeded: false,
		StateReady:     true,
		StateOnHold:    true,
		StateDeleted:   false,
	}
	for state, want := range active {
		d := &Domain{State: state}
		assert.Equal(t, want, d.IsActive(), "state %s", state)
	}
}

func TestDefaultSecurityContact(t *testing.T) {
	domainID := NewDomain(mustName(t, "igorville.gov")).ID
	contact := DefaultSecurityContact(domainID)

	assert.Equal(t, defaultSecurityEmail, contact.Email)
	assert.Equal(t, domainID, contact.DomainID)
	assert.True(t, len(contact.RegistryID) <= 16, "registry handle must fit the 16 character cap")
	assert.Contains(t, contact.RegistryID, "CISA")

	other := DefaultSecurityContact(domainID)
	assert.NotEqual(t, contact.RegistryID, other.RegistryID)
}
