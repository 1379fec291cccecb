/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

// Role describes what a connection is to its room.
type Role string

const (
	// RoleHost is the connection that created the room (the shared display).
	RoleHost Role = "host"
	// RolePlayer is a connection that joined the roster.
	RolePlayer Role = "player"
)

// Binding is what a live connection resolves to.
type Binding struct {
	Code     string
	Role     Role
	PlayerID string
}

// Registry maps connection handles to their room binding. A connection is
// bound to at most one room at a time.
type Registry struct {
	bindings map[string]Binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

func (r *Registry) Bind(conn string, b Binding) {
	if conn == "" {
		return
	}
	r.bindings[conn] = b
}

func (r *Registry) Unbind(conn string) {
	delete(r.bindings, conn)
}

func (r *Registry) Lookup(conn string) (Binding, bool) {
	b, ok := r.bindings[conn]
	return b, ok
}

func (r *Registry) Len() int {
	return len(r.bindings)
}
