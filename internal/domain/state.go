package domain

// allowedStateTransitions is the single source of truth for domain lifecycle
// moves. Deletion must pass through dns needed or on hold; ready never goes
// straight to deleted.
var allowedStateTransitions = map[State][]State{
	StateUnknown:   {StateDNSNeeded, StateReady, StateOnHold},
	StateDNSNeeded: {StateReady, StateOnHold, StateDeleted},
	StateReady:     {StateDNSNeeded, StateOnHold},
	StateOnHold:    {StateReady, StateDNSNeeded, StateDeleted},
	StateDeleted:   {},
}

// canTransition reports whether moving from one state to another is allowed.
func canTransition(from, to State) bool {
	for _, next := range allowedStateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// setState moves the domain to a new state after checking the transition
// table. Callers translate a false return into an ActionNotAllowedError with
// operation-specific wording.
func (d *Domain) setState(to State) bool {
	if !canTransition(d.State, to) {
		return false
	}
	d.State = to
	return true
}
