package domain

import (
	"errors"
	"fmt"
)

var ErrDuplicateLoad = errors.New("domain: duplicate load id")

// Represents a single pickup -> dropoff delivery task.
// Loads are identified by ID and never mutated after construction.
type Load struct {
	ID      int
	Pickup  Point
	Dropoff Point
}

// Length is the loaded driving time from pickup to dropoff.
func (l Load) Length() float64 { return Distance(l.Pickup, l.Dropoff) }

// Return an error if two loads share the same ID.
func ValidateLoads(loads []Load) error {
	seen := make(map[int]struct{}, len(loads))
	for i, l := range loads {
		if _, ok := seen[l.ID]; ok {
			return fmt.Errorf("%w: id=%d at index %d", ErrDuplicateLoad, l.ID, i)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}

// LoadIDs returns the ids of loads in order.
func LoadIDs(loads []Load) []int {
	ids := make([]int, 0, len(loads))
	for _, l := range loads {
		ids = append(ids, l.ID)
	}
	return ids
}
