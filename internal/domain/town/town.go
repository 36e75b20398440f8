// Package town holds the town reference entries used for name completion
// and geo search origins.
package town

import (
	"errors"
	"strings"

	"github.com/paulmach/orb"
)

// Town is one entry of the town reference index.
type Town struct {
	Name     string
	Location orb.Point
}

// New creates a town entry. The name is trimmed and must not be empty.
func New(name string, location orb.Point) (Town, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Town{}, errors.New("town name is required")
	}
	return Town{Name: name, Location: location}, nil
}

// Resolution is the outcome of a coordinate lookup by town name.
type Resolution struct {
	Name     string
	Location orb.Point
	// Fallback is true when the name had no match and the default origin was used.
	Fallback bool
}
