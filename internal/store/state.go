// Package store owns the asset collection. All changes go through typed
// commands applied by a pure function; Store serializes them and persists the
// result under a single key.
package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"familyassets/internal/core"
)

// Filter selects which assets a list shows.
type Filter string

const FilterAll Filter = "all"

// ParseFilter maps a query value to a filter. Empty means all.
func ParseFilter(s string) Filter {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(FilterAll) {
		return FilterAll
	}
	return Filter(s)
}

// Matches reports whether a is shown under f. Category filters compare the
// stored type exactly.
func (f Filter) Matches(a core.Asset) bool {
	return f == FilterAll || f == "" || string(a.Type) == string(f)
}

// State is the whole application state. Values are treated as immutable.
type State struct {
	Assets   []core.Asset
	Filter   Filter
	Revision int64
}

// List returns the assets matching f in insertion order. The result is a
// fresh slice.
func (s State) List(f Filter) []core.Asset {
	out := make([]core.Asset, 0, len(s.Assets))
	for _, a := range s.Assets {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s State) Find(id string) (core.Asset, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Assets[i], true
	}
	return core.Asset{}, false
}

func (s State) indexOf(id string) int {
	for i := range s.Assets {
		if s.Assets[i].ID == id {
			return i
		}
	}
	return -1
}

// Fields are the user-editable parts of an asset.
type Fields struct {
	Name        string
	Type        core.Category
	Amount      decimal.Decimal
	Description string
	Date        core.Date
}

type (
	Command interface {
		command() string
	}

	AddAsset struct {
		Fields Fields
	}

	UpdateAsset struct {
		ID     string
		Fields Fields
	}

	// RemoveAsset only removes when Confirmed is set.
	RemoveAsset struct {
		ID        string
		Confirmed bool
	}

	SetFilter struct {
		Filter Filter
	}
)

func (AddAsset) command() string    { return "add" }
func (UpdateAsset) command() string { return "update" }
func (RemoveAsset) command() string { return "remove" }
func (SetFilter) command() string   { return "set_filter" }

// EventKind describes the outcome of a command.
type EventKind string

const (
	EventAdded         EventKind = "added"
	EventUpdated       EventKind = "updated"
	EventRemoved       EventKind = "removed"
	EventIgnored       EventKind = "ignored"
	EventDeclined      EventKind = "declined"
	EventFilterChanged EventKind = "filter_changed"
)

// Event is returned by Apply. Asset holds the record the command touched,
// when there was one.
type Event struct {
	Kind    EventKind
	Command string
	Asset   core.Asset
}

// Mutated reports whether the asset collection changed.
func (e Event) Mutated() bool {
	switch e.Kind {
	case EventAdded, EventUpdated, EventRemoved:
		return true
	}
	return false
}

// Env supplies the clock and id source so Apply stays deterministic in tests.
type Env struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultEnv uses the wall clock and time-ordered UUIDs.
func DefaultEnv() Env {
	return Env{Now: time.Now, NewID: newID}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

func (e Env) id() string {
	if e.NewID == nil {
		return newID()
	}
	return e.NewID()
}

// Apply computes the state that results from cmd. The input state is never
// modified; mutations produce a new Assets slice and bump Revision.
func Apply(s State, cmd Command, env Env) (State, Event) {
	switch c := cmd.(type) {
	case AddAsset:
		now := env.now()
		id := env.id()
		for s.indexOf(id) >= 0 {
			id = newID()
		}
		a := c.Fields.asset(core.Asset{ID: id, CreatedAt: now})
		next := s.with(append(cloneAssets(s.Assets, 1), a))
		return next, Event{Kind: EventAdded, Command: c.command(), Asset: a}

	case UpdateAsset:
		i := s.indexOf(c.ID)
		if i < 0 {
			return s, Event{Kind: EventIgnored, Command: c.command(), Asset: core.Asset{ID: c.ID}}
		}
		now := env.now()
		a := c.Fields.asset(s.Assets[i])
		a.UpdatedAt = &now
		assets := cloneAssets(s.Assets, 0)
		assets[i] = a
		return s.with(assets), Event{Kind: EventUpdated, Command: c.command(), Asset: a}

	case RemoveAsset:
		i := s.indexOf(c.ID)
		if i < 0 {
			return s, Event{Kind: EventIgnored, Command: c.command(), Asset: core.Asset{ID: c.ID}}
		}
		if !c.Confirmed {
			return s, Event{Kind: EventDeclined, Command: c.command(), Asset: s.Assets[i]}
		}
		removed := s.Assets[i]
		assets := make([]core.Asset, 0, len(s.Assets)-1)
		assets = append(assets, s.Assets[:i]...)
		assets = append(assets, s.Assets[i+1:]...)
		return s.with(assets), Event{Kind: EventRemoved, Command: c.command(), Asset: removed}

	case SetFilter:
		next := s
		next.Filter = ParseFilter(string(c.Filter))
		return next, Event{Kind: EventFilterChanged, Command: c.command()}
	}
	return s, Event{Kind: EventIgnored}
}

func (s State) with(assets []core.Asset) State {
	s.Assets = assets
	s.Revision++
	return s
}

func (f Fields) asset(base core.Asset) core.Asset {
	base.Name = f.Name
	base.Type = f.Type
	base.Amount = f.Amount
	base.Description = f.Description
	base.Date = f.Date
	return base
}

func cloneAssets(in []core.Asset, extra int) []core.Asset {
	out := make([]core.Asset, len(in), len(in)+extra)
	copy(out, in)
	return out
}
