package domain

import (
	"errors"
	"fmt"
)

const (
	DefaultDriverCost = 500.0
	DefaultMaxTime    = 12 * 60.0
)

// Params holds the cost model shared by every route of a run.
type Params struct {
	// Fixed cost charged for every activated driver.
	DriverCost float64
	// Upper bound (exclusive) on the duration of a single route.
	MaxTime float64
	Depot   Point
}

func DefaultParams() Params {
	return Params{
		DriverCost: DefaultDriverCost,
		MaxTime:    DefaultMaxTime,
		Depot:      Point{X: 0, Y: 0},
	}
}

func (p Params) Validate() error {
	if p.MaxTime <= 0 {
		return fmt.Errorf("params: max time must be positive, got %v", p.MaxTime)
	}
	if p.DriverCost < 0 {
		return errors.New("params: driver cost must not be negative")
	}
	return nil
}
