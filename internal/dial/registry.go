// Package dial models VU1 dials and the registry that binds logical
// metric roles to the dials a server actually has.
package dial

import (
	"context"
)

// Lister fetches the server's dial listing. Implementations route the call
// through the resilient transport.
type Lister func(ctx context.Context) ([]Dial, error)

// Registry maps roles to live dials. It is built once by Load and is
// read-only afterwards.
type Registry struct {
	names Names
	dials map[Role]Dial
}

// NewRegistry creates an empty registry that will match dials using names.
// Roles missing from names fall back to their canonical name.
func NewRegistry(names Names) *Registry {
	bound := DefaultNames()
	for role, name := range names {
		if name != "" {
			bound[role] = name
		}
	}
	return &Registry{
		names: bound,
		dials: make(map[Role]Dial),
	}
}

// Load fetches the listing once and keeps the dials whose name matches a
// configured role. If the server reports two dials with the same name the
// later one wins.
func (r *Registry) Load(ctx context.Context, list Lister) (map[Role]Dial, error) {
	listing, err := list(ctx)
	if err != nil {
		return nil, err
	}

	if len(listing) == 0 {
		return nil, ErrNoDialsReturned
	}

	byName := make(map[string]Role, len(r.names))
	for role, name := range r.names {
		byName[name] = role
	}

	dials := make(map[Role]Dial)
	for _, d := range listing {
		if role, ok := byName[d.Name]; ok {
			dials[role] = d
		}
	}

	if len(dials) == 0 {
		return nil, ErrNoKnownDials
	}

	r.dials = dials
	return r.Snapshot(), nil
}

// Check reports whether role has a dial. It never touches the network.
func (r *Registry) Check(role Role) bool {
	_, ok := r.dials[role]
	return ok
}

// Resolve returns the dial bound to role, or a *NotImplementedError.
func (r *Registry) Resolve(role Role) (Dial, error) {
	d, ok := r.dials[role]
	if !ok {
		return Dial{}, &NotImplementedError{Role: role}
	}
	return d, nil
}

// Roles returns the roles present in the registry in canonical order.
func (r *Registry) Roles() []Role {
	present := make([]Role, 0, len(r.dials))
	for _, role := range Roles {
		if r.Check(role) {
			present = append(present, role)
		}
	}
	return present
}

// Name returns the configured display name for role.
func (r *Registry) Name(role Role) string {
	return r.names[role]
}

// Len returns the number of bound dials.
func (r *Registry) Len() int {
	return len(r.dials)
}

// Snapshot returns a copy of the role mapping.
func (r *Registry) Snapshot() map[Role]Dial {
	out := make(map[Role]Dial, len(r.dials))
	for role, d := range r.dials {
		out[role] = d
	}
	return out
}
