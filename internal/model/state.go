package model

import (
	"strings"

	"fyne.io/fyne/v2/data/binding"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/collection"
	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/store"
)

// ApplicationState mirrors the core store into Fyne data bindings.
// All UI components bind to these values for reactive updates.
type ApplicationState struct {
	// Workspace
	Tabs     binding.StringList
	Active   binding.Int    // -1 when no tab is open
	ActiveID binding.String // "" when no tab is open

	// Collection
	Tree     binding.Item[domain.Tree]
	Previews binding.Item[map[string]domain.Preview]
	History  binding.Item[[]domain.HistoryEntry] // newest first

	// Active session
	Session binding.Item[session.Snapshot]
	Loading binding.Bool

	Connection *ConnectionUIState
}

// NewApplicationState creates a new ApplicationState with initialized bindings.
func NewApplicationState() *ApplicationState {
	active := binding.NewInt()
	_ = active.Set(-1)

	previews := binding.NewItem(neverEqual[map[string]domain.Preview])
	_ = previews.Set(map[string]domain.Preview{})

	return &ApplicationState{
		Tabs:       binding.NewStringList(),
		Active:     active,
		ActiveID:   binding.NewString(),
		Tree:       binding.NewItem(neverEqual[domain.Tree]),
		Previews:   previews,
		History:    binding.NewItem(neverEqual[[]domain.HistoryEntry]),
		Session:    binding.NewItem(neverEqual[session.Snapshot]),
		Loading:    binding.NewBool(),
		Connection: NewConnectionUIState(),
	}
}

// neverEqual is the comparator for bound values that hold slices or maps. They
// are not comparable with ==, so every Set notifies listeners.
func neverEqual[T any](_, _ T) bool {
	return false
}

// Bind subscribes the bindings to st and copies its current state.
func (s *ApplicationState) Bind(st *store.Store) {
	st.Workspace.OnChange(func(ws domain.Workspace) {
		s.syncWorkspace(st, ws)
	})
	st.Collection.OnChange(func(collection.Change) {
		s.syncCollection(st)
	})
	st.Sessions.OnChange(func(id string) {
		if active, _ := s.ActiveID.Get(); active == id {
			s.syncSession(st, id)
		}
	})

	s.syncCollection(st)
	s.syncWorkspace(st, st.Workspace.Snapshot())
}

func (s *ApplicationState) syncWorkspace(st *store.Store, ws domain.Workspace) {
	_ = s.Tabs.Set(append([]string{}, ws.Tabs...))
	_ = s.Active.Set(ws.Active)
	id, _ := ws.ActiveID()
	_ = s.ActiveID.Set(id)
	s.syncSession(st, id)
}

func (s *ApplicationState) syncCollection(st *store.Store) {
	_ = s.Tree.Set(st.Collection.Tree())
	_ = s.Previews.Set(st.Collection.Previews())

	_ = s.History.Set(st.Collection.History())
}

func (s *ApplicationState) syncSession(st *store.Store, id string) {
	snap, ok := st.Sessions.Get(id)
	if !ok {
		snap = session.Snapshot{}
	}
	_ = s.Session.Set(snap)
	_ = s.Loading.Set(snap.IsLoading)
}

// ActiveSession returns the session bound to the active tab.
func (s *ApplicationState) ActiveSession() session.Snapshot {
	snap, _ := s.Session.Get()
	return snap
}

// CurrentTree returns the bound tree.
func (s *ApplicationState) CurrentTree() domain.Tree {
	tree, _ := s.Tree.Get()
	return tree
}

// Preview returns the bound preview of id.
func (s *ApplicationState) Preview(id string) (domain.Preview, bool) {
	previews, _ := s.Previews.Get()
	p, ok := previews[id]
	return p, ok
}

// ConnectionUIState represents the UI state for connection status display.
// States: "disconnected", "connecting", "connected", "error"
type ConnectionUIState struct {
	State   binding.String // Connection state
	Message binding.String // Status message
}

// NewConnectionUIState creates a new ConnectionUIState with initialized bindings.
func NewConnectionUIState() *ConnectionUIState {
	state := binding.NewString()
	_ = state.Set(stateName(backend.StateDisconnected))

	return &ConnectionUIState{
		State:   state,
		Message: binding.NewString(),
	}
}

// Update applies a transport state change.
func (c *ConnectionUIState) Update(state backend.ConnectionState, message string) {
	_ = c.State.Set(stateName(state))
	_ = c.Message.Set(message)
}

func stateName(state backend.ConnectionState) string {
	return strings.ToLower(state.String())
}
