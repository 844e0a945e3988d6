package dm

import (
	"github.com/joshuapare/memkit/mem/region"
)

// Options configures an Engine.
type Options struct {
	// Root address range, backing stores and allocator logging of
	// standalone regions.
	region.Options
}

// DefaultOptions returns the options used by New when none are given.
func DefaultOptions() Options {
	return Options{Options: region.DefaultOptions()}
}
