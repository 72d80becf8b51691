package render

import (
	"image/color"
	"testing"

	"arena-shooter/internal/game"
)

func testSnapshot() *game.GameSnapshot {
	cfg := game.DefaultConfig()
	player := game.NewPlayer(cfg.PlayerSpawn)
	return &game.GameSnapshot{
		State:     game.StateRunning,
		TimeLeft:  180,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Obstacles: cfg.Obstacles,
		Player:    player,
		Enemies: []game.Combatant{
			{ID: game.BossID, X: 800, Y: 300, Angle: game.EnemyFacing, Health: 50, Team: game.TeamB},
		},
		Projectiles: []game.Projectile{{X: 450, Y: 100, Team: game.TeamA}},
		Weapon:      game.GetWeapon(0),
		Ammo:        500,
		Level:       1,
	}
}

func rgbaAt(r *Renderer, x, y int) color.RGBA {
	return color.RGBAModel.Convert(r.Image().At(x, y)).(color.RGBA)
}

func TestNewRejectsEmptySurface(t *testing.T) {
	if _, err := New(0, 600); err == nil {
		t.Error("Expected error for zero width surface")
	}
}

// TestRenderColors samples known pixels of each layer
func TestRenderColors(t *testing.T) {
	r, err := New(1000, 600)
	if err != nil {
		t.Fatal(err)
	}
	r.Render(testSnapshot())

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"background", 50, 500, ColorBackground},
		{"obstacle fill", 340, 190, ColorObstacle},
		{"player body", 92, 300, ColorTeamA},
		{"player facing indicator", 116, 300, color.RGBA{255, 255, 255, 255}},
		{"player health bar", 85, 277, ColorHealth},
		{"boss body", 810, 300, ColorTeamB},
		{"boss facing indicator", 776, 300, color.RGBA{255, 255, 255, 255}},
		{"boss health remainder", 815, 270, ColorTeamB},
		{"projectile", 450, 100, ColorBulletA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgbaAt(r, tt.x, tt.y); got != tt.want {
				t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
			}
		})
	}

	if len(r.Pixels()) != 1000*600*4 {
		t.Errorf("Expected %d bytes of pixels, got %d", 1000*600*4, len(r.Pixels()))
	}
	if r.Frames() != 1 {
		t.Errorf("Expected 1 frame, got %d", r.Frames())
	}
}

// TestRenderClearsPreviousFrame moves a projectile and checks the old spot
func TestRenderClearsPreviousFrame(t *testing.T) {
	r, _ := New(1000, 600)
	snap := testSnapshot()
	r.Render(snap)

	snap.Projectiles = nil
	r.Render(snap)

	if got := rgbaAt(r, 450, 100); got != ColorBackground {
		t.Errorf("Stale projectile pixel: %v", got)
	}
}

func TestRenderNilSnapshot(t *testing.T) {
	r, _ := New(100, 100)
	r.Render(nil)
	if got := rgbaAt(r, 10, 10); got != ColorBackground {
		t.Errorf("Expected background, got %v", got)
	}
}

func TestRenderSatisfiesSurface(t *testing.T) {
	r, _ := New(1000, 600)
	_, err := game.NewLoop(game.Options{Config: game.DefaultConfig(), Surface: r})
	if err != nil {
		t.Fatalf("Renderer should be a usable surface: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#1A1F2C", color.RGBA{0x1a, 0x1f, 0x2c, 255}},
		{"#ea384c", color.RGBA{0xea, 0x38, 0x4c, 255}},
		{"bogus", color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWeaponSlots(t *testing.T) {
	tests := []struct {
		level  int
		active int
		want   string
	}{
		{1, 0, "[1] - -"},
		{2, 1, "1 [2] -"},
		{4, 0, "[1] 2 -"},
		{5, 2, "1 2 [3]"},
		{9, 7, "1 2 3"},
	}

	for _, tt := range tests {
		if got := weaponSlots(tt.level, tt.active); got != tt.want {
			t.Errorf("weaponSlots(%d, %d) = %q, want %q", tt.level, tt.active, got, tt.want)
		}
	}
}
