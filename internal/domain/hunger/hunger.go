// Package hunger modela el hambre de una mascota como un recurso que decae
// linealmente desde el último alimento. Funciones puras, sin I/O.
package hunger

import "time"

const (
	Max          = 100.0
	DecayPerHour = 1.0
)

type State string

const (
	StateFull      State = "full"
	StateSatisfied State = "satisfied"
	StateFine      State = "fine"
	StateHungry    State = "hungry"
	StateStarving  State = "starving"
)

// Current calcula el hambre a now partiendo de base medido en lastFedAt.
// El resultado siempre queda en [0, Max].
func Current(base float64, lastFedAt, now time.Time) float64 {
	hours := now.Sub(lastFedAt).Hours()
	return clamp(base - DecayPerHour*hours)
}

// Restore suma amount al valor actual sin pasar de Max.
func Restore(current, amount float64) float64 {
	return clamp(current + amount)
}

// StateOf discretiza un valor. Los bordes exactos (80/60/40/20) caen en la banda inferior.
func StateOf(v float64) State {
	switch {
	case v > 80:
		return StateFull
	case v > 60:
		return StateSatisfied
	case v > 40:
		return StateFine
	case v > 20:
		return StateHungry
	default:
		return StateStarving
	}
}

func clamp(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	return max(0, min(Max, v))
}
