// Command dust-term runs the dust world in a terminal. Each character cell
// shows two grid rows using an upper half block.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"dustfall/internal/core"
	"dustfall/internal/sims/dust"
)

const statusRows = 1

type term struct {
	screen tcell.Screen
	world  *dust.World
	log    *zap.Logger

	materials []string
	material  int
	radius    int
	paused    bool
	seed      int64
	painting  string
	mouseX    int
	mouseY    int
}

func main() {
	cfg := dust.DefaultConfig()
	cfg.Width, cfg.Height = 0, 0
	configPath := flag.String("config", "", "YAML file with simulation settings")
	tps := flag.Int("tps", 30, "ticks per second")
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if *configPath != "" {
		loaded, err := dust.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		flag.Visit(func(f *flag.Flag) { loaded.Apply(map[string]string{f.Name: f.Value.String()}) })
		cfg = loaded
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	cols, rows := screen.Size()
	if cfg.Width <= 0 {
		cfg.Width = cols
	}
	if cfg.Height <= 0 {
		cfg.Height = 2 * max(rows-statusRows, 1)
	}

	t := &term{
		screen: screen,
		world:  dust.NewWithConfig(cfg),
		log:    zap.NewNop(),
		radius: max(cfg.BrushRadius/2, 1),
		seed:   cfg.Seed,
	}
	t.materials = t.world.Materials()
	t.material = 2
	t.run(*tps)
}

func (t *term) run(tps int) {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go t.screen.ChannelEvents(events, quit)

	clock := core.NewFixedStep(tps)
	ticker := time.NewTicker(clock.Interval())
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if !t.handle(ev) {
				close(quit)
				return
			}
		case <-ticker.C:
			for !t.paused && clock.ShouldStep() {
				t.paint()
				t.world.Step()
			}
			t.draw()
		}
	}
}

// handle applies one input event. It returns false when the user quits.
func (t *term) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			t.material = (t.material + 1) % len(t.materials)
		case tcell.KeyRune:
			switch r := ev.Rune(); {
			case r == 'q':
				return false
			case r == ' ':
				t.paused = !t.paused
			case r == 'n':
				t.paint()
				t.world.Step()
			case r == 'r':
				t.world.Reset(t.seed)
			case r == 's':
				t.seed = time.Now().UnixNano()
				t.world.Reset(t.seed)
			case r == '+' || r == '=':
				t.radius++
			case r == '-':
				t.radius = max(0, t.radius-1)
			case r >= '0' && r <= '9' && int(r-'0') < len(t.materials):
				t.material = int(r - '0')
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		switch btn := ev.Buttons(); {
		case btn&tcell.Button1 != 0:
			t.painting = t.materials[t.material]
		case btn&tcell.Button2 != 0, btn&tcell.Button3 != 0:
			t.painting = t.materials[0]
		default:
			t.painting = ""
		}
		t.mouseX, t.mouseY = x, y
	}
	return true
}

func (t *term) brushAt(col, row int) {
	if row < statusRows {
		return
	}
	x, y := col, 2*(row-statusRows)
	if err := t.world.PaintCircle(x, y, t.radius, t.painting); err != nil {
		t.log.Warn("paint failed", zap.Error(err))
	}
}

// paint keeps a held button pouring at the last reported position, since
// tcell only sends mouse events on motion or button changes.
func (t *term) paint() {
	if t.painting != "" {
		t.brushAt(t.mouseX, t.mouseY)
	}
}

func (t *term) draw() {
	size := t.world.Size()
	px := t.world.Pixels()
	cols, rows := t.screen.Size()
	for row := statusRows; row < rows; row++ {
		y := 2 * (row - statusRows)
		for x := 0; x < cols; x++ {
			style := halfBlock(pixelAt(px, size, x, y), pixelAt(px, size, x, y+1))
			t.screen.SetContent(x, row, '▀', nil, style)
		}
	}
	s := t.world.LastStats()
	state := "running"
	if t.paused {
		state = "paused"
	}
	line := fmt.Sprintf(" %s r=%d | frame %d particles %d active %d pending %d | %s | 0-%d material, +/- radius, q quit",
		t.materials[t.material], t.radius, s.Frame, s.Particles, s.Active, s.Pending, state, len(t.materials)-1)
	bar := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(line) {
			r = rune(line[x])
		}
		t.screen.SetContent(x, 0, r, nil, bar)
	}
	t.screen.Show()
}

func pixelAt(px []byte, size core.Size, x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= size.W || y >= size.H {
		return color.RGBA{}
	}
	i := 4 * (y*size.W + x)
	return color.RGBA{R: px[i], G: px[i+1], B: px[i+2], A: px[i+3]}
}

// halfBlock styles an upper half block: the foreground is the top pixel and
// the background the bottom one. Transparent pixels render black.
func halfBlock(top, bottom color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(toColor(top)).Background(toColor(bottom))
}

func toColor(c color.RGBA) tcell.Color {
	if c.A == 0 {
		return tcell.ColorBlack
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
