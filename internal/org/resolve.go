package org

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// EnsureNonFederalAgency returns the sentinel agency, creating it on first
// use. Resolution happens at approval time only, never eagerly.
func EnsureNonFederalAgency(ctx context.Context, store AgencyStore) (*FederalAgency, error) {
	agency, err := store.FindByName(ctx, NonFederalAgencyName)
	if err == nil {
		return agency, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	agency = &FederalAgency{ID: id.NewAgencyID(), Name: NonFederalAgencyName}
	if err := store.Save(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

// NormalizeName collapses internal whitespace and lowercases, the comparison
// key for suborganization deduplication.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// internalSpaces counts the spaces left after collapsing runs of whitespace.
func internalSpaces(name string) int {
	return len(strings.Fields(name)) - 1
}

// leadingCapitalizedWords counts words that start with an uppercase letter.
func leadingCapitalizedWords(name string) int {
	n := 0
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsUpper(r) {
				n++
			}
			break
		}
	}
	return n
}

// chooseSurvivor picks the canonical record among duplicates: fewest internal
// spaces first, then most leading-capitalized words. Ties fall to the oldest
// record so reruns are stable.
func chooseSurvivor(candidates []*Suborganization) *Suborganization {
	sorted := make([]*Suborganization, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := internalSpaces(sorted[i].Name), internalSpaces(sorted[j].Name)
		if si != sj {
			return si < sj
		}
		ci, cj := leadingCapitalizedWords(sorted[i].Name), leadingCapitalizedWords(sorted[j].Name)
		if ci != cj {
			return ci > cj
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted[0]
}

// Deduplicator collapses duplicate suborganization names within a portfolio.
type Deduplicator struct {
	suborgs SuborgStore
	refs    ReferenceRepointer
}

func NewDeduplicator(suborgs SuborgStore, refs ReferenceRepointer) *Deduplicator {
	return &Deduplicator{suborgs: suborgs, refs: refs}
}

// Deduplicate repoints references from each duplicate to the chosen survivor
// and deletes the duplicate. Returns the number of records removed.
func (d *Deduplicator) Deduplicate(ctx context.Context, portfolioID id.PortfolioID) (int, error) {
	all, err := d.suborgs.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]*Suborganization)
	for _, sub := range all {
		key := NormalizeName(sub.Name)
		groups[key] = append(groups[key], sub)
	}

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		survivor := chooseSurvivor(group)
		for _, dup := range group {
			if dup.ID == survivor.ID {
				continue
			}
			if err := d.refs.RepointSuborganization(ctx, dup.ID, survivor.ID); err != nil {
				return removed, err
			}
			if err := d.suborgs.Delete(ctx, dup.ID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
