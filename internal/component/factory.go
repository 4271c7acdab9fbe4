package component

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pagecraft/backend/internal/models"
)

// CreateOptions carries optional overrides for Factory.Create. Any field
// left zero keeps the type default.
type CreateOptions struct {
	Props      map[string]any
	Dimensions *models.Dimensions
	ZIndex     *int
}

// Factory builds new component records with per-type defaults.
type Factory struct {
	rules *RuleSet
	now   func() int64
}

// NewFactory creates a factory using the built-in rule set.
func NewFactory() *Factory {
	return &Factory{
		rules: DefaultRules(),
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// Rules returns the rule set the factory validates against.
func (f *Factory) Rules() *RuleSet {
	return f.rules
}

// SetRules replaces the active rule set. A nil argument restores defaults.
func (f *Factory) SetRules(rs *RuleSet) {
	if rs == nil {
		rs = DefaultRules()
	}
	f.rules = rs
}

// Create allocates a new component of the given type at the given position.
// Type defaults are merged with opts; metadata starts at version 1. Create
// never fails: defaults are always valid and unknown types still produce an
// empty-props component.
func (f *Factory) Create(t models.ComponentType, pos models.Position, opts *CreateOptions) *models.Component {
	now := f.now()

	props := defaultProps(t)
	dims := defaultDimensions(t)
	zIndex := 0
	if opts != nil {
		for k, v := range opts.Props {
			props[k] = v
		}
		if opts.Dimensions != nil {
			dims = *opts.Dimensions
		}
		if opts.ZIndex != nil {
			zIndex = *opts.ZIndex
		}
	}

	return &models.Component{
		ID:          NewComponentID(),
		Type:        t,
		Position:    pos,
		Dimensions:  dims,
		ZIndex:      zIndex,
		Props:       props,
		Constraints: models.DefaultConstraints(),
		Metadata: models.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
	}
}

// Clone deep-copies a component under a freshly generated id, resets its
// metadata to version 1 and offsets the position so the copy is visible
// next to the original.
func (f *Factory) Clone(c *models.Component) *models.Component {
	if c == nil {
		return nil
	}
	now := f.now()
	dup := c.Clone()
	dup.ID = NewComponentID()
	dup.Position.X += CloneOffset
	dup.Position.Y += CloneOffset
	dup.Metadata = models.Metadata{CreatedAt: now, UpdatedAt: now, Version: 1}
	return dup
}

// NewComponentID generates a component id of the form
// comp-<epoch-ms>-<random-hex>. Uniqueness is best effort; the random
// suffix makes collisions within one millisecond negligible.
func NewComponentID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to the clock alone; still unique across milliseconds.
		return fmt.Sprintf("comp-%d-%x", time.Now().UnixMilli(), time.Now().UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("comp-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf[:]))
}
