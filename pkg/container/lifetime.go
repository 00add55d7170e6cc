package container

// Lifetime controls how instances of a registered service are reused.
//
// The numeric values are part of the contract: lifetime markers written as
// integers (//mediator::lifetime 1) are mapped through this table.
type Lifetime int

const (
	// Scoped creates one instance per scope. This is the default.
	Scoped Lifetime = iota
	// Singleton creates one instance per provider and shares it across scopes.
	Singleton
	// Transient creates a new instance on every resolution.
	Transient
)

// String returns the lifetime name
func (l Lifetime) String() string {
	switch l {
	case Scoped:
		return "Scoped"
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	default:
		return "Unknown"
	}
}

// Valid reports whether l is one of the defined lifetimes
func (l Lifetime) Valid() bool {
	return l >= Scoped && l <= Transient
}

// LifetimeFromOrdinal maps an ordinal to a lifetime. Out-of-range values
// report false.
func LifetimeFromOrdinal(n int64) (Lifetime, bool) {
	l := Lifetime(n)
	if int64(l) != n || !l.Valid() {
		return Scoped, false
	}
	return l, true
}

// ParseLifetime maps a lifetime name (as returned by String) to its value.
func ParseLifetime(name string) (Lifetime, bool) {
	switch name {
	case "Scoped":
		return Scoped, true
	case "Singleton":
		return Singleton, true
	case "Transient":
		return Transient, true
	default:
		return Scoped, false
	}
}
