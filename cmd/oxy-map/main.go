// Command oxy-map opens the map editor on a small sample map.
//
// Mouse: left click selects, ctrl+left drag paints the selection, left drag on a selected
// object moves it (alt moves vertically), right drag orbits, middle drag pans, wheel zooms.
// Keys: delete removes selected entities, L locks the selection, U unlocks everything,
// T toggles textures, F5 reloads models, escape cancels the current drag. Dropping a file
// named after an entity class, such as light.ent, places that entity.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/loader"
	"github.com/Carmen-Shannon/oxy-map/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// defaultDefinitions are used when no definition file is given.
const defaultDefinitions = `
definitions:
  - name: worldspawn
    type: worldspawn
  - name: info_player_start
    type: point
    color: [0, 1, 0, 1]
    bounds: {min: [-16, -16, -24], max: [16, 16, 32]}
    model: {path: models/player.glb}
  - name: light
    type: point
    color: [1, 1, 0, 1]
    bounds: {min: [-8, -8, -8], max: [8, 8, 8]}
  - name: item_health
    type: point
    color: [1, 0, 0, 1]
    bounds: {min: [-16, -16, 0], max: [16, 16, 16]}
    model: {path: models/health.gltf, skin: 0, frame: 0}
  - name: func_door
    type: brush
    color: [0, 0.5, 0.8, 1]
`

func main() {
	prefsPath := flag.String("prefs", defaultPrefsPath(), "preferences file (TOML)")
	defsPath := flag.String("defs", "", "entity definition file (YAML)")
	assets := flag.String("assets", "", "comma separated asset roots, searched in order")
	debug := flag.Bool("debug", false, "log debug messages")
	profile := flag.Bool("profile", false, "log frame statistics")
	flag.Parse()

	// ── Logging ─────────────────────────────────────────────────────────
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*prefsPath, *defsPath, *assets, *profile); err != nil {
		common.Logger().Error("oxy-map failed", "error", err)
		os.Exit(1)
	}
}

func run(prefsPath, defsPath, assets string, profile bool) error {
	// ── Preferences + Definitions ───────────────────────────────────────
	prefs, err := config.LoadPreferences(prefsPath)
	if err != nil {
		return err
	}
	if assets != "" {
		prefs.SearchPaths = strings.Split(assets, ",")
	}

	defs, err := loadDefinitions(defsPath)
	if err != nil {
		return err
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(profile),
		engine.WithTickRate(30),
		engine.WithPreferences(prefs),
		engine.WithDefinitions(defs),
		engine.WithWindow(window.NewWindow(
			window.WithTitle("oxy-map"),
			window.WithSize(1600, 900),
			window.WithSizeLimits(640, 360, 3840, 2160),
		)),
	)

	// ── Map ─────────────────────────────────────────────────────────────
	eng.LoadMap(sampleMap(eng.Loader()))
	eng.Window().SetTitle(fmt.Sprintf("oxy-map - %d entities", len(eng.Document().Map().Entities())))

	eng.Run()
	return nil
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "oxy-map.toml"
	}
	return filepath.Join(dir, "oxy-map", "preferences.toml")
}

func loadDefinitions(path string) (document.DefinitionSet, error) {
	var r io.Reader = strings.NewReader(defaultDefinitions)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open entity definitions: %w", err)
		}
		defer f.Close()
		r = f
	}
	return document.LoadDefinitions(r)
}

// sampleMap builds a walled room with a door, a pillar and a few point entities. Textures
// missing from the search path are replaced by placeholders.
func sampleMap(l loader.Loader) *document.Map {
	texture := func(name string) *document.Texture {
		t, err := l.LoadTexture("textures/" + name + ".png")
		if err != nil {
			common.Logger().Debug("using placeholder texture", "texture", name, "error", err)
			return document.NewDummyTexture(name)
		}
		return t
	}
	floor, wall, trim := texture("floor"), texture("wall"), texture("trim")

	m := document.NewMap()
	world := m.Worldspawn()
	cuboid := func(t *document.Texture, min, max mgl32.Vec3) {
		world.AddBrush(document.NewCuboidBrush(min, max, t))
	}

	// ── Room ────────────────────────────────────────────────────────────
	cuboid(floor, mgl32.Vec3{-512, -512, -16}, mgl32.Vec3{512, 512, 0})
	cuboid(floor, mgl32.Vec3{-512, -512, 256}, mgl32.Vec3{512, 512, 272})
	cuboid(wall, mgl32.Vec3{-528, -512, 0}, mgl32.Vec3{-512, 512, 256})
	cuboid(wall, mgl32.Vec3{512, -512, 0}, mgl32.Vec3{528, 512, 256})
	cuboid(wall, mgl32.Vec3{-512, 512, 0}, mgl32.Vec3{512, 528, 256})
	cuboid(wall, mgl32.Vec3{-512, -528, 0}, mgl32.Vec3{-64, -512, 256})
	cuboid(wall, mgl32.Vec3{64, -528, 0}, mgl32.Vec3{512, -512, 256})
	cuboid(wall, mgl32.Vec3{-64, -528, 128}, mgl32.Vec3{64, -512, 256})
	cuboid(trim, mgl32.Vec3{-64, -64, 0}, mgl32.Vec3{64, 64, 192})

	// ── Entities ────────────────────────────────────────────────────────
	door := document.NewEntity("func_door", map[string]string{"angle": "90"})
	door.AddBrush(document.NewCuboidBrush(mgl32.Vec3{-64, -524, 0}, mgl32.Vec3{64, -516, 128}, trim))
	add := func(e *document.Entity) {
		if err := m.AddEntity(e); err != nil {
			common.Logger().Warn("failed to add sample entity", "classname", e.Classname(), "error", err)
		}
	}
	add(door)
	add(document.NewEntity("info_player_start", map[string]string{"origin": "-256 -256 24"}))
	add(document.NewEntity("light", map[string]string{"origin": "0 0 224"}))
	add(document.NewEntity("light", map[string]string{"origin": "-320 320 224"}))
	add(document.NewEntity("item_health", map[string]string{"origin": "256 256 0", "skin": "0"}))
	return m
}
