// Package inspector resolves the type of the variable under the caret and
// publishes it to a status-bar widget.
package inspector

import (
	"typeinspector/internal/core/config"
	"typeinspector/internal/core/ports"
)

// BufferPositionKey identifies a caret position for caching.
type BufferPositionKey struct {
	Buffer ports.BufferID
	Offset int
}

// TypeQueryResult is the status text shown for a caret position.
type TypeQueryResult string

const (
	ResultNoTypeRecognized TypeQueryResult = "No type recognized"
	ResultNoVariableFound  TypeQueryResult = "No variable found"
	ResultNoFileFound      TypeQueryResult = "No file found"

	typePrefix = "Type: "
)

// TypeResult formats a recognized type.
func TypeResult(displayName string) TypeQueryResult {
	return TypeQueryResult(typePrefix + displayName)
}

// Options tunes sessions and the widgets created for them.
type Options struct {
	// CacheCapacity bounds each session cache; 0 is unbounded.
	CacheCapacity      int
	InvalidateOnChange bool

	// DiscardSuperseded drops completed resolutions older than the newest
	// published one. When false the last completion wins.
	DiscardSuperseded       bool
	MaxResolutionsPerSecond float64
	ResolutionBurst         int
}

func DefaultOptions() Options {
	return Options{
		InvalidateOnChange: true,
		DiscardSuperseded:  true,
		ResolutionBurst:    1,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		CacheCapacity:           cfg.Cache.Capacity,
		InvalidateOnChange:      cfg.Cache.InvalidationEnabled(),
		DiscardSuperseded:       cfg.Publisher.DiscardSupersededEnabled(),
		MaxResolutionsPerSecond: cfg.Publisher.MaxResolutionsPerSecond,
		ResolutionBurst:         cfg.Publisher.ResolutionBurst,
	}
}
