package bsdf

// Flags classifies a BxDF along the two axes spec.md §4.3 requires:
// reflection/transmission and delta/glossy/diffuse.
type Flags uint8

const (
	Reflection Flags = 1 << iota
	Transmission
	Diffuse
	Glossy
	Delta
)

const (
	AllTypes = Diffuse | Glossy | Delta
	All      = AllTypes | Reflection | Transmission
)

// Matches reports whether every bit set in f is also set in test — a BxDF
// participates in a query only if the query's flags are a superset of its
// own (spec.md §4.3's flag-taxonomy filter).
func (f Flags) Matches(test Flags) bool {
	return f&test == f
}

func (f Flags) IsDelta() bool { return f&Delta != 0 }
