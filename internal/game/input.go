package game

import "math"

// Input is one tick's worth of sampled player intent
type Input struct {
	Up, Down, Left, Right bool

	// Touch joystick vector, each axis in [-1, 1]. Takes precedence over
	// the directional keys while active.
	JoystickActive bool
	JoystickX      float64
	JoystickY      float64

	AimX, AimY float64 // playfield coordinates

	Fire         int // fire requests accumulated since the last tick
	SelectWeapon int // 1-based catalog slot, 0 for no change
}

// Movement returns the per-axis direction in [-1, 1]
func (in Input) Movement() (dx, dy float64) {
	if in.JoystickActive {
		dx, dy = in.JoystickX, in.JoystickY
		if mag := math.Hypot(dx, dy); mag > 1 {
			dx, dy = dx/mag, dy/mag
		}
		return dx, dy
	}
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	return dx, dy
}
