package domain

import (
	"slices"

	"golang.org/x/exp/maps"
)

// Members is an unordered set of connection ids.
type Members struct {
	set map[string]struct{}
}

func NewMembers(ids ...string) *Members {
	m := &Members{set: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		m.set[id] = struct{}{}
	}
	return m
}

func (m Members) Length() int {
	return len(m.set)
}

func (m Members) Has(id string) bool {
	_, ok := m.set[id]
	return ok
}

// Add reports false if id was already a member.
func (m *Members) Add(id string) bool {
	if m.Has(id) {
		return false
	}
	m.set[id] = struct{}{}
	return true
}

// Remove reports false if id was not a member.
func (m *Members) Remove(id string) bool {
	if !m.Has(id) {
		return false
	}
	delete(m.set, id)
	return true
}

// AsList returns the ids sorted, so fan-out order is stable.
func (m Members) AsList() []string {
	ids := maps.Keys(m.set)
	slices.Sort(ids)
	return ids
}
