package maps

import "errors"

var (
	// ErrAssetMissing means the map file for a year does not exist.
	ErrAssetMissing = errors.New("map image not found")
	// ErrMalformedImage means the map file exists but cannot be read or decoded.
	ErrMalformedImage = errors.New("map image cannot be decoded")
	// ErrUnknownYear means the year is not part of the deployment catalog.
	ErrUnknownYear = errors.New("year is not in the catalog")
	// ErrOpacityOutOfRange rejects blend weights outside [MinOpacity, MaxOpacity].
	ErrOpacityOutOfRange = errors.New("opacity out of range")
)

// IsUnavailable reports whether err is one of the recoverable asset errors.
// Callers surface those as warnings and keep going.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrAssetMissing) || errors.Is(err, ErrMalformedImage)
}
