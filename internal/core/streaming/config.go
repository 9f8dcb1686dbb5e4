package streaming

import (
	"errors"
	"fmt"

	"github.com/zeusync/corridor/internal/core/catalog"
)

// Config holds the window's tile counts and placement tuning.
type Config struct {
	// StartingBlankTiles segments at the start carry no interactable.
	StartingBlankTiles int `yaml:"starting_blank_tiles" json:"starting_blank_tiles"`
	// TotalTiles is the fixed queue length after initialisation.
	TotalTiles int `yaml:"total_world_tiles" json:"total_world_tiles"`
	// TileUpdateDistance is how far the actor must be past the head segment
	// before it is evicted.
	TileUpdateDistance float64 `yaml:"tile_update_distance" json:"tile_update_distance"`
	// TileKerning scales the cursor step; 1 places segments edge to edge.
	TileKerning float64 `yaml:"tile_kerning" json:"tile_kerning"`
}

const maxKerning = 2.0

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		StartingBlankTiles: 2,
		TotalTiles:         5,
		TileUpdateDistance: 25,
		TileKerning:        1,
	}
}

// Validate reports every problem at once, wrapped in
// catalog.ErrConfiguration.
func (c Config) Validate() error {
	var errs []error
	if c.StartingBlankTiles <= 0 {
		errs = append(errs, fmt.Errorf("starting blank tiles must be positive, got %d", c.StartingBlankTiles))
	}
	if c.TotalTiles <= 0 {
		errs = append(errs, fmt.Errorf("total tiles must be positive, got %d", c.TotalTiles))
	}
	if c.TotalTiles < c.StartingBlankTiles {
		errs = append(errs, fmt.Errorf("total tiles %d is less than starting blank tiles %d",
			c.TotalTiles, c.StartingBlankTiles))
	}
	if c.TileUpdateDistance <= 0 {
		errs = append(errs, fmt.Errorf("tile update distance must be positive, got %g", c.TileUpdateDistance))
	}
	if c.TileKerning <= 0 || c.TileKerning > maxKerning {
		errs = append(errs, fmt.Errorf("tile kerning must be in (0, %g], got %g", maxKerning, c.TileKerning))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", catalog.ErrConfiguration, errors.Join(errs...))
}
