// Package config loads the handmouse configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration value fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	DominantHand    string        `yaml:"dominant_hand" json:"dominant_hand"`
	CameraID        int           `yaml:"camera_id" json:"camera_id"`
	FPS             int           `yaml:"fps" json:"fps"`
	Mirror          bool          `yaml:"mirror" json:"mirror"`
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	Tray            bool          `yaml:"tray" json:"tray"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	LogDir          string        `yaml:"log_dir" json:"log_dir"`
	DataDir         string        `yaml:"data_dir" json:"data_dir"`
	PluginDir       string        `yaml:"plugin_dir" json:"plugin_dir"`
	MaxReadFailures int           `yaml:"max_read_failures" json:"max_read_failures"`
	MotionGate      MotionConfig  `yaml:"motion_gate" json:"motion_gate"`
	Gesture         GestureConfig `yaml:"gesture" json:"gesture"`
	Pinch           PinchConfig   `yaml:"pinch" json:"pinch"`
	Damping         DampingConfig `yaml:"damping" json:"damping"`
	Actions         ActionsConfig `yaml:"actions" json:"actions"`
}

// MotionConfig controls skipping hand detection on still frames while no
// hand is in view.
type MotionConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled"`
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	HoldFrames int     `yaml:"hold_frames" json:"hold_frames"`
}

// GestureConfig holds the classifier thresholds.
type GestureConfig struct {
	ExtendedRatio float64 `yaml:"extended_ratio" json:"extended_ratio"`
	RatioEpsilon  float64 `yaml:"ratio_epsilon" json:"ratio_epsilon"`
	PinchDistance float64 `yaml:"pinch_distance" json:"pinch_distance"`
	VSpreadRatio  float64 `yaml:"v_spread_ratio" json:"v_spread_ratio"`
	ClosedDepth   float64 `yaml:"closed_depth" json:"closed_depth"`
	StableFrames  int     `yaml:"stable_frames" json:"stable_frames"`
}

// PinchConfig holds the pinch tracking parameters.
type PinchConfig struct {
	Threshold    float64 `yaml:"threshold" json:"threshold"`
	StableFrames int     `yaml:"stable_frames" json:"stable_frames"`
	Scale        float64 `yaml:"scale" json:"scale"`
}

// DampingConfig holds the cursor damping curve.
type DampingConfig struct {
	DeadZone  float64 `yaml:"dead_zone" json:"dead_zone"`
	FastZone  float64 `yaml:"fast_zone" json:"fast_zone"`
	Gain      float64 `yaml:"gain" json:"gain"`
	FastRatio float64 `yaml:"fast_ratio" json:"fast_ratio"`
}

// ActionsConfig holds the mapping from committed pinch magnitude to actions.
type ActionsConfig struct {
	BrightnessBase float64 `yaml:"brightness_base" json:"brightness_base"`
	BrightnessGain float64 `yaml:"brightness_gain" json:"brightness_gain"`
	ScrollUnit     int     `yaml:"scroll_unit" json:"scroll_unit"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DominantHand:    "Right",
		CameraID:        0,
		FPS:             30,
		Mirror:          true,
		ListenAddr:      "127.0.0.1:8765",
		LogLevel:        "info",
		DataDir:         defaultDataDir(),
		MaxReadFailures: 150,
		MotionGate: MotionConfig{
			Enabled:    false,
			Threshold:  0.5,
			HoldFrames: 30,
		},
		Gesture: GestureConfig{
			ExtendedRatio: 0.5,
			RatioEpsilon:  0.01,
			PinchDistance: 0.05,
			VSpreadRatio:  1.7,
			ClosedDepth:   0.1,
			StableFrames:  5,
		},
		Pinch: PinchConfig{
			Threshold:    0.3,
			StableFrames: 5,
			Scale:        10,
		},
		Damping: DampingConfig{
			DeadZone:  25,
			FastZone:  900,
			Gain:      0.07,
			FastRatio: 2.1,
		},
		Actions: ActionsConfig{
			BrightnessBase: 50,
			BrightnessGain: 20,
			ScrollUnit:     120,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handmouse"
	}
	return filepath.Join(home, ".handmouse")
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.DominantHand, _ = NormalizeHand(cfg.DominantHand)
	return cfg, nil
}

// Validate checks that every tunable is usable.
func (c Config) Validate() error {
	if _, err := NormalizeHand(c.DominantHand); err != nil {
		return err
	}
	if c.Gesture.StableFrames <= 0 || c.Pinch.StableFrames <= 0 {
		return fmt.Errorf("%w: stable frame counts must be positive", ErrInvalid)
	}
	if c.Pinch.Scale <= 0 || c.Pinch.Threshold <= 0 {
		return fmt.Errorf("%w: pinch scale and threshold must be positive", ErrInvalid)
	}
	if c.Gesture.RatioEpsilon <= 0 {
		return fmt.Errorf("%w: ratio_epsilon must be positive", ErrInvalid)
	}
	if c.Damping.DeadZone < 0 || c.Damping.DeadZone >= c.Damping.FastZone {
		return fmt.Errorf("%w: damping dead_zone must be below fast_zone", ErrInvalid)
	}
	if c.Actions.ScrollUnit <= 0 {
		return fmt.Errorf("%w: scroll_unit must be positive", ErrInvalid)
	}
	if c.MotionGate.Threshold < 0 || c.MotionGate.HoldFrames < 0 {
		return fmt.Errorf("%w: motion_gate values must not be negative", ErrInvalid)
	}
	if c.MaxReadFailures <= 0 {
		return fmt.Errorf("%w: max_read_failures must be positive", ErrInvalid)
	}
	return nil
}

// ResolvedPluginDir returns PluginDir, falling back to <DataDir>/plugins.
func (c Config) ResolvedPluginDir() string {
	if c.PluginDir != "" {
		return c.PluginDir
	}
	return filepath.Join(c.DataDir, "plugins")
}

// NormalizeHand canonicalizes a handedness label to "Left" or "Right".
func NormalizeHand(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return "Left", nil
	case "right":
		return "Right", nil
	}
	return "", fmt.Errorf("%w: dominant hand %q must be Left or Right", ErrInvalid, s)
}

// Settings keys that may be persisted and applied with Apply.
const (
	KeyDominantHand   = "dominant_hand"
	KeyPinchThreshold = "pinch.threshold"
	KeyPinchScale     = "pinch.scale"
	KeyStableFrames   = "gesture.stable_frames"
)

// Apply sets a single persisted setting. Unknown keys are rejected so typos
// in the settings table surface at startup.
func (c *Config) Apply(key, value string) error {
	switch key {
	case KeyDominantHand:
		hand, err := NormalizeHand(value)
		if err != nil {
			return err
		}
		c.DominantHand = hand
	case KeyPinchThreshold:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, key, value)
		}
		c.Pinch.Threshold = v
	case KeyPinchScale:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, key, value)
		}
		c.Pinch.Scale = v
	case KeyStableFrames:
		v, err := strconv.Atoi(value)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, key, value)
		}
		c.Gesture.StableFrames = v
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
	}
	return nil
}
