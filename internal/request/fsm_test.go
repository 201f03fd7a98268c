package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTableIsValid(t *testing.T) {
	require.NoError(t, validateTransitionTable())
}

func TestLookupTransition(t *testing.T) {
	allowed := []struct {
		from   Status
		event  Event
		target Status
	}{
		{StatusStarted, EventSubmit, StatusSubmitted},
		{StatusWithdrawn, EventSubmit, StatusSubmitted},
		{StatusInReview, EventSubmit, StatusSubmitted},
		{StatusActionNeeded, EventSubmit, StatusSubmitted},
		{StatusSubmitted, EventInReview, StatusInReview},
		{StatusApproved, EventInReview, StatusInReview},
		{StatusIneligible, EventInReview, StatusInReview},
		{StatusInReview, EventActionNeeded, StatusActionNeeded},
		{StatusRejected, EventActionNeeded, StatusActionNeeded},
		{StatusSubmitted, EventApprove, StatusApproved},
		{StatusRejected, EventApprove, StatusApproved},
		{StatusInReview, EventReject, StatusRejected},
		{StatusApproved, EventReject, StatusRejected},
		{StatusInReview, EventRejectWithPrejudice, StatusIneligible},
		{StatusSubmitted, EventWithdraw, StatusWithdrawn},
		{StatusActionNeeded, EventWithdraw, StatusWithdrawn},
	}
	for _, tc := range allowed {
		tr, err := lookupTransition(tc.from, tc.event)
		require.NoError(t, err, "%s from %s", tc.event, tc.from)
		assert.Equal(t, tc.target, tr.target)
	}

	forbidden := []struct {
		from  Status
		event Event
	}{
		{StatusStarted, EventApprove},
		{StatusStarted, EventWithdraw},
		{StatusSubmitted, EventReject},
		{StatusWithdrawn, EventInReview},
		{StatusApproved, EventSubmit},
		{StatusApproved, EventWithdraw},
		{StatusIneligible, EventReject},
		{StatusRejected, EventWithdraw},
	}
	for _, tc := range forbidden {
		_, err := lookupTransition(tc.from, tc.event)
		var tna *TransitionNotAllowedError
		require.ErrorAs(t, err, &tna, "%s from %s", tc.event, tc.from)
		assert.Contains(t, tna.Error(), string(tc.event))
		assert.Contains(t, tna.Error(), string(tc.from))
	}
}

func TestGuards(t *testing.T) {
	t.Run("submit requires a requested domain", func(t *testing.T) {
		env := &guardEnv{req: &DomainRequest{Status: StatusStarted}}
		err := guardRequestedDomain(env)
		require.Error(t, err)
		assert.Equal(t, "A requested domain is required before the request can be submitted.", err.Error())

		env.req.RequestedDomain = "igorville.gov"
		assert.NoError(t, guardRequestedDomain(env))
	})

	t.Run("investigator must be assigned and staff", func(t *testing.T) {
		req := &DomainRequest{Status: StatusSubmitted}
		err := guardInvestigatorStaff(&guardEnv{req: req})
		require.Error(t, err)
		assert.Equal(t, "This action is not permitted. An investigator must be assigned, and must be staff.", err.Error())

		req.InvestigatorID = newUserID(t)
		err = guardInvestigatorStaff(&guardEnv{req: req, investigatorStaff: false})
		require.Error(t, err)

		assert.NoError(t, guardInvestigatorStaff(&guardEnv{req: req, investigatorStaff: true}))
	})

	t.Run("active domain blocks leaving approved", func(t *testing.T) {
		req := &DomainRequest{Status: StatusApproved}
		err := guardDomainNotActive(&guardEnv{req: req, domainActive: true})
		require.Error(t, err)
		assert.Equal(t, "This action is not permitted. The domain is already active.", err.Error())

		assert.NoError(t, guardDomainNotActive(&guardEnv{req: req}))
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		req := &DomainRequest{Status: StatusInReview}
		err := guardRejectionReason(&guardEnv{req: req})
		require.Error(t, err)
		assert.Equal(t, "A reason is required for this status.", err.Error())

		req.RejectionReason = RejectionOther
		assert.NoError(t, guardRejectionReason(&guardEnv{req: req}))
	})
}

func TestSyncOrganizationType(t *testing.T) {
	electionBoard := true
	req := New(newUserID(t))
	req.GenericOrgType = OrgTypeCity
	req.IsElectionBoard = &electionBoard
	req.SyncOrganizationType()
	assert.Equal(t, "city_election", req.OrganizationType)

	req.GenericOrgType = OrgTypeFederal
	req.SyncOrganizationType()
	assert.Equal(t, "federal", req.OrganizationType)
	assert.Nil(t, req.IsElectionBoard, "non election capable org types force the flag off")
}
