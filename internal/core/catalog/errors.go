package catalog

import "errors"

var (
	// ErrConfiguration marks a catalog or tile configuration that cannot
	// drive a streaming window. It is fatal at startup.
	ErrConfiguration = errors.New("invalid corridor configuration")
	// ErrGraphLookup marks a successor walk that cannot produce a template.
	ErrGraphLookup = errors.New("interactable graph lookup failed")
)
