package domain

import "encoding/json"

// Workspace is the persisted form of the open tabs: ordered ids, the active
// index (-1 when empty) and an opaque layout blob owned by the front end.
type Workspace struct {
	Tabs   []string        `json:"tabs"`
	Active int             `json:"active"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

// ActiveID returns the id at Active, if any.
func (w Workspace) ActiveID() (string, bool) {
	if w.Active < 0 || w.Active >= len(w.Tabs) {
		return "", false
	}
	return w.Tabs[w.Active], true
}
