package tracking

import (
	"fmt"
	"math"
	"strings"
)

const (
	distanceStepMeters = 5000.0
	minutesPerDistStep = 5
)

type deliveryWindow struct {
	min, max int
}

// windowFor picks the base window from the region family encoded in its name.
func windowFor(region string) deliveryWindow {
	name := strings.ToLower(region)
	switch {
	case strings.Contains(name, "north"):
		return deliveryWindow{45, 60}
	case strings.Contains(name, "south"):
		return deliveryWindow{30, 45}
	case strings.Contains(name, "jersey"):
		return deliveryWindow{60, 90}
	case strings.Contains(name, "county"):
		return deliveryWindow{90, 120}
	default:
		return deliveryWindow{45, 75}
	}
}

func extraMinutes(distanceMeters float64) int {
	return int(math.Floor(distanceMeters/distanceStepMeters)) * minutesPerDistStep
}

// String renders the estimate for people, e.g. "45-60 minutes (+ 10 min for distance)".
func (e Estimate) String() string {
	s := fmt.Sprintf("%d-%d minutes", e.MinMinutes, e.MaxMinutes)
	if e.ExtraMinutes > 0 {
		s += fmt.Sprintf(" (+ %d min for distance)", e.ExtraMinutes)
	}
	return s
}
