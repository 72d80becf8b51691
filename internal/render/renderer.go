package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"arena-shooter/internal/game"
)

// Palette
var (
	ColorBackground     = parseHexColor("#1A1F2C")
	ColorObstacle       = parseHexColor("#2A3F5C")
	ColorObstacleStroke = parseHexColor("#3A5F7C")
	ColorTeamA          = parseHexColor("#0EA5E9")
	ColorTeamB          = parseHexColor("#ea384c")
	ColorHealth         = parseHexColor("#22C55E")
	ColorBulletA        = parseHexColor("#60A5FA")
	ColorBulletB        = parseHexColor("#F87171")
	ColorBossRing       = parseHexColor("#FACC15")
	ColorText           = color.RGBA{240, 240, 245, 255}
	ColorOverlay        = color.RGBA{0, 0, 0, 178}
)

const (
	healthBarWidth  = 40.0
	healthBarHeight = 4.0
	bulletRadius    = 4.0
)

// Renderer draws game snapshots onto a fixed-size gg context. It satisfies
// game.Surface. Not safe for concurrent use.
type Renderer struct {
	dc     *gg.Context
	width  int
	height int
	frames uint64
}

// New creates a renderer with a width x height pixel surface
func New(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid surface size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	return &Renderer{dc: dc, width: width, height: height}, nil
}

// Image returns the rendered frame. The image is reused between frames.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// Pixels returns the frame as tightly packed RGBA bytes
func (r *Renderer) Pixels() []byte {
	if rgba, ok := r.dc.Image().(*image.RGBA); ok {
		return rgba.Pix
	}
	return nil
}

// Frames returns how many frames have been rendered
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Render redraws the whole frame: background, obstacles, combatants,
// projectiles and then the text overlays.
func (r *Renderer) Render(snap *game.GameSnapshot) {
	dc := r.dc
	r.frames++

	r.drawBackground(dc)
	if snap == nil {
		return
	}
	r.drawObstacles(dc, snap)

	r.drawCombatant(dc, &snap.Player)
	for i := range snap.Enemies {
		r.drawCombatant(dc, &snap.Enemies[i])
	}
	r.drawProjectiles(dc, snap.Projectiles)

	r.drawHUD(dc, snap)
	switch snap.State {
	case game.StateIdle:
		r.drawBanner(dc, "PRESS ENTER TO START", "WASD / arrows to move, mouse to aim, click to fire, 1-3 weapons")
	case game.StateEnded:
		r.drawSummary(dc, snap.Summary)
	}
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(ColorBackground)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

func (r *Renderer) drawObstacles(dc *gg.Context, snap *game.GameSnapshot) {
	dc.SetLineWidth(2)
	for _, o := range snap.Obstacles {
		dc.SetColor(ColorObstacle)
		dc.DrawRectangle(o.X, o.Y, o.Width, o.Height)
		dc.Fill()
		dc.SetColor(ColorObstacleStroke)
		dc.DrawRectangle(o.X, o.Y, o.Width, o.Height)
		dc.Stroke()
	}
}

func (r *Renderer) drawCombatant(dc *gg.Context, c *game.Combatant) {
	body := teamColor(c.Team)
	radius := c.Radius()

	if c.IsBoss() {
		dc.SetColor(ColorBossRing)
		dc.SetLineWidth(3)
		dc.DrawCircle(c.X, c.Y, radius+4)
		dc.Stroke()
	}

	// Body and facing indicator share the rotated frame
	dc.Push()
	dc.Translate(c.X, c.Y)
	dc.Rotate(c.Angle)
	dc.SetColor(body)
	dc.DrawCircle(0, 0, radius)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawRectangle(radius-5, -3, 12, 6)
	dc.Fill()
	dc.Pop()

	top := c.Y - radius - 10
	dc.SetColor(body)
	dc.DrawRectangle(c.X-healthBarWidth/2, top, healthBarWidth, healthBarHeight)
	dc.Fill()
	if c.Health > 0 {
		dc.SetColor(ColorHealth)
		dc.DrawRectangle(c.X-healthBarWidth/2, top, healthBarWidth*float64(c.Health)/game.MaxHealth, healthBarHeight)
		dc.Fill()
	}
}

func (r *Renderer) drawProjectiles(dc *gg.Context, projectiles []game.Projectile) {
	for _, p := range projectiles {
		if p.Team == game.TeamA {
			dc.SetColor(ColorBulletA)
		} else {
			dc.SetColor(ColorBulletB)
		}
		dc.DrawCircle(p.X, p.Y, bulletRadius)
		dc.Fill()
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.GameSnapshot) {
	ammo := "inf"
	if !snap.UnlimitedAmmo {
		ammo = fmt.Sprintf("%d", snap.Ammo)
	}
	minutes, seconds := snap.TimeLeft/60, snap.TimeLeft%60

	dc.SetColor(ColorText)
	dc.DrawString(fmt.Sprintf("BLUE %d - %d RED", snap.Stats.ScoreA, snap.Stats.ScoreB), 12, 20)
	dc.DrawStringAnchored(fmt.Sprintf("%d:%02d", minutes, seconds), float64(r.width)/2, 14, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("K %d  D %d  LVL %d", snap.Stats.Kills, snap.Stats.Deaths, snap.Level),
		float64(r.width)-12, 14, 1, 0.5)
	dc.DrawString(fmt.Sprintf("%s  %s  AMMO %s", weaponSlots(snap.Level, snap.WeaponIndex), snap.Weapon.Name, ammo),
		12, float64(r.height)-12)
}

// weaponSlots renders the digit-key slots: the active one bracketed, the
// others unlocked at level shown bare and locked ones as a dash.
func weaponSlots(level, active int) string {
	slots := make([]string, len(game.Weapons))
	for i := range slots {
		slots[i] = "-"
	}
	for _, i := range game.UnlockedWeapons(level) {
		slots[i] = strconv.Itoa(i + 1)
	}
	if active >= 0 && active < len(slots) {
		slots[active] = "[" + slots[active] + "]"
	}
	return strings.Join(slots, " ")
}

func (r *Renderer) drawBanner(dc *gg.Context, title, subtitle string) {
	cx, cy := float64(r.width)/2, float64(r.height)/2
	dc.SetColor(ColorOverlay)
	dc.DrawRectangle(cx-260, cy-40, 520, 80)
	dc.Fill()
	dc.SetColor(ColorText)
	dc.DrawStringAnchored(title, cx, cy-10, 0.5, 0.5)
	dc.DrawStringAnchored(subtitle, cx, cy+14, 0.5, 0.5)
}

func (r *Renderer) drawSummary(dc *gg.Context, sum *game.Summary) {
	if sum == nil {
		return
	}
	title := "DEFEAT"
	if sum.Won {
		title = "VICTORY"
	}
	r.drawBanner(dc, title, fmt.Sprintf("score %d-%d  kills %d  deaths %d  shots %d  +%d xp",
		sum.ScoreA, sum.ScoreB, sum.Kills, sum.Deaths, sum.AmmoUsed, sum.Experience()))
}

func teamColor(t game.Team) color.RGBA {
	if t == game.TeamA {
		return ColorTeamA
	}
	return ColorTeamB
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}
	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}

