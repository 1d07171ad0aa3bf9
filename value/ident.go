package value

import "fmt"

// Ident is an entry's identity component: the part of the canonical key
// that follows "{type}_". Per spec.md §9 this generalizes the UNIQUE
// sentinel into a tagged variant:
//
//	Id = Explicit(u64) | Auto
//
// rack extends it with a third case, Name, because tags (spec.md §3.2)
// are addressed by a human-chosen string rather than a numeric id; the
// canonical-key construction in package schema dispatches on which case
// an Ident holds instead of assuming every entry has a numeric id.
type Ident interface {
	fmt.Stringer

	// isAuto reports whether this Ident is the UNIQUE sentinel requesting
	// id assignment at insert time.
	isAuto() bool
	identSealed()
}

// Auto is the reserved sentinel that requests automatic id assignment
// (spec.md §3.4: UNIQUE as an id value). It is comparable by identity
// only — it can never equal a NumericIdent or NameIdent, however they are
// constructed, because it is its own distinct type.
type Auto struct{}

func (Auto) String() string  { return "UNIQUE" }
func (Auto) isAuto() bool    { return true }
func (Auto) identSealed()    {}

// NumericIdent is a concrete, assigned non-negative integer id.
type NumericIdent int64

func (n NumericIdent) String() string { return fmt.Sprintf("%d", int64(n)) }
func (NumericIdent) isAuto() bool     { return false }
func (NumericIdent) identSealed()     {}

// NameIdent is a concrete, user-chosen name id, used by tags (spec.md
// §3.2: "a tag's canonical key uses the user-chosen name in place of the
// numeric id").
type NameIdent string

func (n NameIdent) String() string { return string(n) }
func (NameIdent) isAuto() bool     { return false }
func (NameIdent) identSealed()     {}

// IsAuto reports whether id is the Auto (UNIQUE) sentinel.
func IsAuto(id Ident) bool { return id.isAuto() }

var (
	_ Ident = Auto{}
	_ Ident = NumericIdent(0)
	_ Ident = NameIdent("")
)
