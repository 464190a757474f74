// Package config holds the editor preferences. Preferences are a plain value passed to the
// components that read them; there is no global instance.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/pelletier/go-toml/v2"
)

// Preferences are the user tunable colors and behaviors of the editor.
// Colors are stored in TOML as [r, g, b, a] arrays with components in [0, 1].
type Preferences struct {
	BackgroundColor common.Color `toml:"background_color"`

	FaceColor         common.Color `toml:"face_color"`
	SelectedFaceColor common.Color `toml:"selected_face_color"`
	LockedFaceColor   common.Color `toml:"locked_face_color"`

	EdgeColor                 common.Color `toml:"edge_color"`
	SelectedEdgeColor         common.Color `toml:"selected_edge_color"`
	OccludedSelectedEdgeColor common.Color `toml:"occluded_selected_edge_color"`
	LockedEdgeColor           common.Color `toml:"locked_edge_color"`

	EntityBoundsColor                 common.Color `toml:"entity_bounds_color"`
	SelectedEntityBoundsColor         common.Color `toml:"selected_entity_bounds_color"`
	OccludedSelectedEntityBoundsColor common.Color `toml:"occluded_selected_entity_bounds_color"`
	LockedEntityBoundsColor           common.Color `toml:"locked_entity_bounds_color"`

	InfoOverlayColor         common.Color `toml:"info_overlay_color"`
	SelectedInfoOverlayColor common.Color `toml:"selected_info_overlay_color"`
	LockedInfoOverlayColor   common.Color `toml:"locked_info_overlay_color"`

	// InfoOverlayFadeDistance is the camera distance beyond which unselected labels are hidden.
	InfoOverlayFadeDistance float32 `toml:"info_overlay_fade_distance"`
	// SelectedInfoOverlayFadeDistance is the same distance for selected labels.
	SelectedInfoOverlayFadeDistance float32 `toml:"selected_info_overlay_fade_distance"`
	// InfoOverlayFadeWidth is the distance over which labels fade out before they are hidden.
	InfoOverlayFadeWidth float32 `toml:"info_overlay_fade_width"`

	// Textured draws faces with their textures; otherwise faces use the texture's average color.
	Textured bool `toml:"textured"`

	GridSize float32 `toml:"grid_size"`

	CameraFov        float32 `toml:"camera_fov"`
	CameraNear       float32 `toml:"camera_near"`
	CameraFar        float32 `toml:"camera_far"`
	CameraOrbitSpeed float32 `toml:"camera_orbit_speed"`
	CameraPanSpeed   float32 `toml:"camera_pan_speed"`
	CameraZoomSpeed  float32 `toml:"camera_zoom_speed"`

	// StagingWorkers is the number of goroutines used to stage face geometry. Zero stages serially.
	StagingWorkers int `toml:"staging_workers"`

	VSync bool `toml:"vsync"`
	MSAA  int  `toml:"msaa"`

	// SearchPaths are the ordered roots used to resolve model and texture paths.
	SearchPaths []string `toml:"search_paths"`
	// WatchAssets reloads entity models when a file below a search path changes.
	WatchAssets bool `toml:"watch_assets"`
}

// DefaultPreferences returns the built in preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		BackgroundColor: common.Color{0.1, 0.1, 0.1, 1},

		FaceColor:         common.Color{0.2, 0.2, 0.2, 1},
		SelectedFaceColor: common.Color{0.6, 0.35, 0.35, 1},
		LockedFaceColor:   common.Color{0.35, 0.35, 0.6, 1},

		EdgeColor:                 common.Color{0.7, 0.7, 0.7, 1},
		SelectedEdgeColor:         common.Color{1, 0, 0, 1},
		OccludedSelectedEdgeColor: common.Color{1, 0, 0, 0.5},
		LockedEdgeColor:           common.Color{0.13, 0.3, 1, 1},

		EntityBoundsColor:                 common.Color{0.5, 0.5, 0.5, 1},
		SelectedEntityBoundsColor:         common.Color{1, 0, 0, 1},
		OccludedSelectedEntityBoundsColor: common.Color{1, 0, 0, 0.5},
		LockedEntityBoundsColor:           common.Color{0.13, 0.3, 1, 1},

		InfoOverlayColor:         common.Color{1, 1, 1, 1},
		SelectedInfoOverlayColor: common.Color{1, 0, 0, 1},
		LockedInfoOverlayColor:   common.Color{0.13, 0.3, 1, 1},

		InfoOverlayFadeDistance:         400,
		SelectedInfoOverlayFadeDistance: 2000,
		InfoOverlayFadeWidth:            50,

		Textured: true,
		GridSize: 16,

		CameraFov:        90,
		CameraNear:       1,
		CameraFar:        8192,
		CameraOrbitSpeed: 0.005,
		CameraPanSpeed:   1,
		CameraZoomSpeed:  32,

		StagingWorkers: 0,
		VSync:          true,
		MSAA:           4,
	}
}

// DecodePreferences reads TOML over base. Keys missing from the document keep the base values.
//
// Parameters:
//   - r: the TOML source
//   - base: the values used for keys the document omits
//
// Returns:
//   - Preferences: the merged preferences
//   - error: error if the document is malformed or names unknown keys
func DecodePreferences(r io.Reader, base Preferences) (Preferences, error) {
	prefs := base
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prefs); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return base, fmt.Errorf("failed to decode preferences at %d:%d: %w", row, col, err)
		}
		return base, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// LoadPreferences reads a TOML preferences file over DefaultPreferences. A missing file yields
// the defaults without error.
//
// Parameters:
//   - path: the preferences file
//
// Returns:
//   - Preferences: the loaded preferences
//   - error: error if the file exists but cannot be read or decoded
func LoadPreferences(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("failed to read preferences %s: %w", path, err)
	}
	return DecodePreferences(bytes.NewReader(data), DefaultPreferences())
}

// SavePreferences writes the preferences as TOML.
//
// Parameters:
//   - path: the destination file
//   - prefs: the preferences to write
//
// Returns:
//   - error: error if encoding or writing fails
func SavePreferences(path string, prefs Preferences) error {
	data, err := toml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences %s: %w", path, err)
	}
	return nil
}
