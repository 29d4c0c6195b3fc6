// Package keygen assigns primary-key values to insert parameters before the
// statement executes, for schemas whose keys are produced client-side.
package keygen

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// KeyGenerator fills the key property of an insert's parameter map. Assign
// runs before statement execution and must leave an existing value alone so
// callers can always supply their own keys.
type KeyGenerator interface {
	Assign(params map[string]any, keyProperty string) error
	Type() string
}

// None is the default generator: keys come from the caller or the database.
type None struct{}

func (None) Assign(map[string]any, string) error { return nil }
func (None) Type() string                        { return "none" }

// UUIDGenerator assigns UUID v4 keys.
type UUIDGenerator struct{}

func (g UUIDGenerator) Assign(params map[string]any, keyProperty string) error {
	if keyProperty == "" {
		return fmt.Errorf("keygen: uuid generator requires a key property")
	}
	if _, ok := params[keyProperty]; ok {
		return nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("keygen: generating UUID: %w", err)
	}
	params[keyProperty] = id.String()
	return nil
}

func (g UUIDGenerator) Type() string { return "uuid" }

// ULIDGenerator assigns lexicographically sortable ULID keys using a
// monotonic entropy source so keys generated in the same millisecond still
// order by creation. One generator instance serves every session inserting
// through the same statement, so the entropy source is locked.
type ULIDGenerator struct {
	entropy *ulid.LockedMonotonicReader
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)},
	}
}

func (g *ULIDGenerator) Assign(params map[string]any, keyProperty string) error {
	if keyProperty == "" {
		return fmt.Errorf("keygen: ulid generator requires a key property")
	}
	if _, ok := params[keyProperty]; ok {
		return nil
	}
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return fmt.Errorf("keygen: generating ULID: %w", err)
	}
	params[keyProperty] = id.String()
	return nil
}

func (g *ULIDGenerator) Type() string { return "ulid" }

// ForName resolves the generator named in statement configuration.
func ForName(name string) (KeyGenerator, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "uuid":
		return UUIDGenerator{}, nil
	case "ulid":
		return NewULIDGenerator(), nil
	default:
		return nil, fmt.Errorf("keygen: unknown key generator %q", name)
	}
}
