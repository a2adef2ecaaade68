package account

import (
	"fmt"
	"slices"

	"rollupstate/internal/felt"
)

// Library is a compiled set of exported procedure roots.
type Library struct {
	name  string
	roots []felt.Digest
}

// NewLibrary returns a library exporting roots in order.
func NewLibrary(name string, roots ...felt.Digest) (*Library, error) {
	seen := make(map[felt.Digest]struct{}, len(roots))
	for _, r := range roots {
		if _, dup := seen[r]; dup {
			return nil, fmt.Errorf("%w: %s in library %q", ErrDuplicateProcedure, r, name)
		}
		seen[r] = struct{}{}
	}
	return &Library{name: name, roots: slices.Clone(roots)}, nil
}

func (l *Library) Name() string { return l.name }

// Roots returns the exported procedure roots.
func (l *Library) Roots() []felt.Digest {
	return slices.Clone(l.roots)
}

// Component is a library together with the storage slots its procedures operate on and
// the account types it can be installed into.
type Component struct {
	library   *Library
	slots     []StorageSlot
	supported map[AccountType]struct{}
}

// NewComponent returns a component supporting no account types. Add types with
// WithSupportedType or WithSupportsAllTypes.
func NewComponent(library *Library, slots ...StorageSlot) *Component {
	return &Component{
		library:   library,
		slots:     slices.Clone(slots),
		supported: make(map[AccountType]struct{}),
	}
}

func (c *Component) WithSupportedType(t AccountType) *Component {
	c.supported[t] = struct{}{}
	return c
}

func (c *Component) WithSupportsAllTypes() *Component {
	for _, t := range AllAccountTypes {
		c.supported[t] = struct{}{}
	}
	return c
}

// SupportsType reports whether the component may be installed into an account of type t.
func (c *Component) SupportsType(t AccountType) bool {
	_, ok := c.supported[t]
	return ok
}

func (c *Component) Library() *Library { return c.library }

// StorageSlots returns the slots the component contributes.
func (c *Component) StorageSlots() []StorageSlot {
	return slices.Clone(c.slots)
}
