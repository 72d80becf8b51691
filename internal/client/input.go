package client

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"arena-shooter/internal/game"
)

// joystickRadius is how far a touch must drag to reach full speed
const joystickRadius = 60.0

// Devices is the raw input the sampler reads each update
type Devices interface {
	KeyPressed(k ebiten.Key) bool
	KeyJustPressed(k ebiten.Key) bool
	Cursor() (x, y int)
	MouseJustPressed() bool
	Touches() []ebiten.TouchID
	JustPressedTouches() []ebiten.TouchID
	TouchPosition(id ebiten.TouchID) (x, y int)
}

// ebitenDevices reads the live ebiten input state
type ebitenDevices struct {
	touches []ebiten.TouchID
	pressed []ebiten.TouchID
}

func (ebitenDevices) KeyPressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (ebitenDevices) KeyJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }
func (ebitenDevices) Cursor() (int, int)               { return ebiten.CursorPosition() }

func (ebitenDevices) MouseJustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

func (d *ebitenDevices) Touches() []ebiten.TouchID {
	d.touches = ebiten.AppendTouchIDs(d.touches[:0])
	return d.touches
}

func (d *ebitenDevices) JustPressedTouches() []ebiten.TouchID {
	d.pressed = inpututil.AppendJustPressedTouchIDs(d.pressed[:0])
	return d.pressed
}

func (ebitenDevices) TouchPosition(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }

// Sampler turns device state into one tick of game.Input. The first touch
// acts as a virtual joystick anchored where it landed; any further touch
// fires.
type Sampler struct {
	dev Devices

	stick       ebiten.TouchID
	stickActive bool
	originX     float64
	originY     float64
}

// NewSampler creates a sampler over dev
func NewSampler(dev Devices) *Sampler {
	return &Sampler{dev: dev}
}

// Commands are the non-gameplay keys seen this update
type Commands struct {
	Start bool
	Quit  bool
}

// Sample reads the devices once
func (s *Sampler) Sample() (game.Input, Commands) {
	d := s.dev
	in := game.Input{
		Up:    d.KeyPressed(ebiten.KeyW) || d.KeyPressed(ebiten.KeyArrowUp),
		Down:  d.KeyPressed(ebiten.KeyS) || d.KeyPressed(ebiten.KeyArrowDown),
		Left:  d.KeyPressed(ebiten.KeyA) || d.KeyPressed(ebiten.KeyArrowLeft),
		Right: d.KeyPressed(ebiten.KeyD) || d.KeyPressed(ebiten.KeyArrowRight),
	}

	mx, my := d.Cursor()
	in.AimX, in.AimY = float64(mx), float64(my)
	if d.MouseJustPressed() {
		in.Fire++
	}

	for slot, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3} {
		if d.KeyJustPressed(key) {
			in.SelectWeapon = slot + 1
		}
	}

	s.sampleTouches(&in)

	cmd := Commands{
		Start: d.KeyJustPressed(ebiten.KeyEnter) || d.KeyJustPressed(ebiten.KeySpace),
		Quit:  d.KeyJustPressed(ebiten.KeyEscape),
	}
	return in, cmd
}

func (s *Sampler) sampleTouches(in *game.Input) {
	touches := s.dev.Touches()

	if s.stickActive && !containsTouch(touches, s.stick) {
		s.stickActive = false
	}

	for _, id := range s.dev.JustPressedTouches() {
		if !s.stickActive {
			x, y := s.dev.TouchPosition(id)
			s.stick, s.stickActive = id, true
			s.originX, s.originY = float64(x), float64(y)
			continue
		}
		if id != s.stick {
			in.Fire++
		}
	}

	if !s.stickActive {
		return
	}
	x, y := s.dev.TouchPosition(s.stick)
	in.JoystickActive = true
	in.JoystickX = (float64(x) - s.originX) / joystickRadius
	in.JoystickY = (float64(y) - s.originY) / joystickRadius
}

func containsTouch(ids []ebiten.TouchID, id ebiten.TouchID) bool {
	for _, t := range ids {
		if t == id {
			return true
		}
	}
	return false
}
