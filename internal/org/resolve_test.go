package org

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "department of examples", NormalizeName("  Department   of  Examples "))
	assert.Equal(t, NormalizeName("Bureau of Things"), NormalizeName("bureau  OF   things"))
}

func TestChooseSurvivor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fewest internal spaces wins", func(t *testing.T) {
		compact := &Suborganization{ID: id.NewSuborgID(), Name: "TreasuryBureau", CreatedAt: base}
		spaced := &Suborganization{ID: id.NewSuborgID(), Name: "Treasury  Bureau", CreatedAt: base.Add(time.Hour)}
		assert.Equal(t, compact.ID, chooseSurvivor([]*Suborganization{spaced, compact}).ID)
	})

	t.Run("most leading-capitalized words breaks the tie", func(t *testing.T) {
		capitalized := &Suborganization{ID: id.NewSuborgID(), Name: "Treasury Bureau", CreatedAt: base.Add(time.Hour)}
		lowercase := &Suborganization{ID: id.NewSuborgID(), Name: "treasury bureau", CreatedAt: base}
		assert.Equal(t, capitalized.ID, chooseSurvivor([]*Suborganization{lowercase, capitalized}).ID)
	})

	t.Run("oldest record wins a full tie", func(t *testing.T) {
		older := &Suborganization{ID: id.NewSuborgID(), Name: "Treasury Bureau", CreatedAt: base}
		newer := &Suborganization{ID: id.NewSuborgID(), Name: "Treasury Bureau", CreatedAt: base.Add(time.Hour)}
		assert.Equal(t, older.ID, chooseSurvivor([]*Suborganization{newer, older}).ID)
	})
}

func TestEnsureNonFederalAgency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAgencyStore()

	first, err := EnsureNonFederalAgency(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, NonFederalAgencyName, first.Name)
	assert.True(t, first.IsSentinel())

	second, err := EnsureNonFederalAgency(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "sentinel must be created once and reused")
}

// fakeRepointer records repoint calls for the dedup suite.
type fakeRepointer struct {
	moves map[id.SuborgID]id.SuborgID
	refs  map[id.SuborgID]int
}

func newFakeRepointer() *fakeRepointer {
	return &fakeRepointer{moves: make(map[id.SuborgID]id.SuborgID), refs: make(map[id.SuborgID]int)}
}

func (f *fakeRepointer) RepointSuborganization(_ context.Context, from, to id.SuborgID) error {
	f.moves[from] = to
	f.refs[to] += f.refs[from]
	f.refs[from] = 0
	return nil
}

func (f *fakeRepointer) CountSuborganizationRefs(_ context.Context, subID id.SuborgID) (int, error) {
	return f.refs[subID], nil
}

type DeduplicatorSuite struct {
	suite.Suite
	ctx       context.Context
	store     *MemorySuborgStore
	refs      *fakeRepointer
	dedup     *Deduplicator
	portfolio id.PortfolioID
}

func TestDeduplicatorSuite(t *testing.T) {
	suite.Run(t, new(DeduplicatorSuite))
}

func (s *DeduplicatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemorySuborgStore()
	s.refs = newFakeRepointer()
	s.dedup = NewDeduplicator(s.store, s.refs)
	s.portfolio = id.NewPortfolioID()
}

func (s *DeduplicatorSuite) add(name string, createdAt time.Time) *Suborganization {
	sub := NewSuborganization(s.portfolio, name, "", "")
	sub.CreatedAt = createdAt
	s.Require().NoError(s.store.Save(s.ctx, sub))
	return sub
}

func (s *DeduplicatorSuite) TestDeduplicate() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Run("duplicates are collapsed onto the survivor", func() {
		survivor := s.add("Water Board", base)
		dup := s.add("water   board", base.Add(time.Hour))
		s.refs.refs[dup.ID] = 3

		removed, err := s.dedup.Deduplicate(s.ctx, s.portfolio)
		s.Require().NoError(err)
		s.Equal(1, removed)

		_, err = s.store.FindByID(s.ctx, dup.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(survivor.ID, s.refs.moves[dup.ID])
		n, _ := s.refs.CountSuborganizationRefs(s.ctx, survivor.ID)
		s.Equal(3, n)
	})

	s.Run("distinct names are untouched", func() {
		s.add("Parks Department", base)
		s.add("Roads Department", base)

		removed, err := s.dedup.Deduplicate(s.ctx, s.portfolio)
		s.Require().NoError(err)
		s.Zero(removed)
	})
}
