package tracker

import "math"

// Quick-add amounts offered by the water tracker, in ml.
const (
	WaterGlass  = 250
	WaterBottle = 500
)

// WaterStatus is the day's hydration progress.
type WaterStatus struct {
	Current int `json:"current"`
	Goal    int `json:"goal"`
	Percent int `json:"percent"`
}

// AddWater returns current+amount, floored at zero.
func AddWater(current, amount int) int {
	if next := current + amount; next > 0 {
		return next
	}
	return 0
}

// Water computes the progress towards goal, rounded and capped at 100%.
func Water(current, goal int) WaterStatus {
	status := WaterStatus{Current: current, Goal: goal}
	if goal <= 0 {
		return status
	}
	pct := int(math.Round(float64(current) / float64(goal) * 100))
	if pct > 100 {
		pct = 100
	}
	status.Percent = pct
	return status
}
