package annotations

import (
	"strings"

	"github.com/toyz/mediator/pkg/container"
)

// ResolveLifetime maps the lifetime markers found on a handler type to a
// container lifetime. Only the first marker is considered. A missing marker,
// a marker that fails to parse, or an argument that is not a known lifetime
// ordinal or name all resolve to Scoped.
func ResolveLifetime(markers []string) container.Lifetime {
	if len(markers) == 0 {
		return container.Scoped
	}

	marker, err := ParseMarker(markers[0])
	if err != nil || marker.Name != LifetimeMarker || len(marker.Args) == 0 {
		return container.Scoped
	}

	return marker.Args[0].Lifetime()
}

// Lifetime interprets the argument as a lifetime
func (a *Argument) Lifetime() container.Lifetime {
	switch {
	case a == nil:
		return container.Scoped
	case a.Int != nil:
		if lt, ok := container.LifetimeFromOrdinal(*a.Int); ok {
			return lt
		}
	case a.Ident != nil:
		name := *a.Ident
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if lt, ok := container.ParseLifetime(name); ok {
			return lt
		}
	}
	return container.Scoped
}
