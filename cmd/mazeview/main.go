// Command mazeview renders generated or stored levels in the terminal.
//
//	mazeview -seed 42
//	mazeview -db db.json -level <id>
//
// Keys: n next seed, p previous seed, q or Esc quit.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"maze-realm/server/logger"
	"maze-realm/server/maze"
	"maze-realm/server/models"
	"maze-realm/server/persistence"
)

var tileStyles = map[models.Tile]struct {
	glyph rune
	style tcell.Style
}{
	models.TileWall:         {'█', tcell.StyleDefault.Foreground(tcell.ColorGray)},
	models.TileOpen:         {'.', tcell.StyleDefault.Foreground(tcell.ColorDarkGray)},
	models.TileCorridor:     {' ', tcell.StyleDefault},
	models.TileRoomInterior: {'·', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
	models.TileGoal:         {'G', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)},
}

type viewer struct {
	screen tcell.Screen
	cfg    maze.Config
	grid   *maze.Grid
	title  string
	fixed  bool // a stored level cannot be reseeded
}

func main() {
	cfg := maze.DefaultConfig(1)
	flag.IntVar(&cfg.Width, "width", cfg.Width, "grid width (odd)")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "grid height (odd)")
	flag.IntVar(&cfg.RoomAttempts, "attempts", cfg.RoomAttempts, "room placement attempts")
	flag.IntVar(&cfg.MinRoomSize, "min", cfg.MinRoomSize, "minimum room size, inclusive")
	flag.IntVar(&cfg.MaxRoomSize, "max", cfg.MaxRoomSize, "maximum room size, exclusive")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "generation seed")
	dbFile := flag.String("db", "", "JSON store to load a level from")
	levelID := flag.String("level", "", "stored level ID, latest if empty (with -db)")
	flag.Parse()

	logger.Discard()

	v := &viewer{cfg: cfg}
	var err error
	if *dbFile != "" {
		err = v.loadStored(*dbFile, *levelID)
	} else {
		err = v.generate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v.screen = screen
	v.run()
}

func (v *viewer) generate() error {
	res, err := maze.Generate(v.cfg)
	if err != nil {
		return err
	}
	v.grid = res.Grid
	v.title = fmt.Sprintf("seed %d  %dx%d  rooms %d  cells %d  sealed %d",
		v.cfg.Seed, v.cfg.Width, v.cfg.Height, len(res.Rooms), res.Stats.Cells, res.Stats.Sealed)
	return nil
}

func (v *viewer) loadStored(path, id string) error {
	store, err := persistence.NewJSONStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var level *models.Level
	if id == "" {
		level, err = store.LatestLevel()
	} else {
		level, err = store.LoadLevel(id)
	}
	if err != nil {
		return err
	}

	v.grid, err = maze.FromTiles(level.Tiles)
	if err != nil {
		return err
	}
	v.fixed = true
	v.title = fmt.Sprintf("level %s  stage %d  seed %d", level.ID, level.Stage, level.Seed)
	return nil
}

func (v *viewer) run() {
	v.draw()
	for {
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return
			}
			if ev.Key() == tcell.KeyRune && !v.fixed {
				switch ev.Rune() {
				case 'n':
					v.reseed(1)
				case 'p':
					v.reseed(-1)
				}
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case nil:
			return
		}
		v.draw()
	}
}

func (v *viewer) reseed(delta int64) {
	prev := v.cfg.Seed
	v.cfg.Seed += delta
	if err := v.generate(); err != nil {
		v.cfg.Seed = prev
		v.title = err.Error()
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	drawString(v.screen, 0, 0, v.title, tcell.StyleDefault.Bold(true))
	drawGrid(v.screen, v.grid, 0, 1)
	v.screen.Show()
}

// drawGrid paints one cell per tile with its top-left corner at (ox, oy)
func drawGrid(screen tcell.Screen, grid *maze.Grid, ox, oy int) {
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			tile, err := grid.Get(x, y)
			if err != nil {
				continue
			}
			ts := tileStyles[tile]
			screen.SetContent(ox+x, oy+y, ts.glyph, nil, ts.style)
		}
	}
}

func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
