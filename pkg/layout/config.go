package layout

import (
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archview/pkg/errors"
)

// Spacing holds the separation constants of one layout pass.
type Spacing struct {
	// RankSep is the gap between consecutive ranks (columns).
	RankSep float64 `json:"rank_sep" toml:"rank_sep" validate:"gte=0"`
	// NodeSep is the gap between neighbors within a rank.
	NodeSep float64 `json:"node_sep" toml:"node_sep" validate:"gte=0"`
	// Padding is the inset between a container's border and its content.
	// For the top-level pass it offsets the whole drawing from the origin.
	Padding float64 `json:"padding" toml:"padding" validate:"gte=0"`
}

// Config controls both layout passes. Inner applies inside containers,
// Top to the parentless units.
type Config struct {
	Inner Spacing `json:"inner" toml:"inner"`
	Top   Spacing `json:"top" toml:"top"`

	NodeWidth  float64 `json:"node_width" toml:"node_width" validate:"gt=0"`
	NodeHeight float64 `json:"node_height" toml:"node_height" validate:"gt=0"`

	EmptyContainerWidth  float64 `json:"empty_container_width" toml:"empty_container_width" validate:"gt=0"`
	EmptyContainerHeight float64 `json:"empty_container_height" toml:"empty_container_height" validate:"gt=0"`

	// Passes is the number of barycentric sweeps per ranked layout.
	// Zero uses the ordering package default.
	Passes int `json:"passes" toml:"passes" validate:"gte=0,lte=1000"`
}

// DefaultConfig returns the spacing used by the editor integration: tight
// spacing inside containers and wider separation at the top level so nested
// content has room.
func DefaultConfig() Config {
	return Config{
		Inner:                Spacing{RankSep: 80, NodeSep: 50, Padding: 40},
		Top:                  Spacing{RankSep: 150, NodeSep: 100, Padding: 0},
		NodeWidth:            250,
		NodeHeight:           100,
		EmptyContainerWidth:  300,
		EmptyContainerHeight: 200,
		Passes:               24,
	}
}

var validate = validator.New()

// Validate reports an ErrCodeInvalidConfig error for negative spacing,
// non-positive node sizes or an out-of-range pass count.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	return nil
}
