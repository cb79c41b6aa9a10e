package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/player/pkg/media/mpv"
	"github.com/go-drift/player/pkg/player"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "driftplay.yaml"

// Config represents the optional driftplay.yaml configuration.
type Config struct {
	Player   PlayerConfig   `yaml:"player"`
	Backend  BackendConfig  `yaml:"backend"`
	Progress ProgressConfig `yaml:"progress"`
	Episodes []Episode      `yaml:"episodes"`
}

// PlayerConfig holds the preferences applied when the player starts.
// Unset fields take their defaults in Resolve.
type PlayerConfig struct {
	Ambient     *bool    `yaml:"ambient,omitempty"`
	StableVoice *bool    `yaml:"stable_voice,omitempty"`
	AutoAdvance *bool    `yaml:"auto_advance,omitempty"`
	Volume      *float64 `yaml:"volume,omitempty"`
}

// BackendConfig locates the external binaries.
type BackendConfig struct {
	MPV           string `yaml:"mpv,omitempty"`
	FFmpeg        string `yaml:"ffmpeg,omitempty"`
	MinMPVVersion string `yaml:"min_mpv_version,omitempty"`
}

// ProgressConfig configures the watch progress store.
type ProgressConfig struct {
	DB       string        `yaml:"db,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Episode is one playable item with its qualities and mirrors.
type Episode struct {
	Title     string    `yaml:"title"`
	Intro     []float64 `yaml:"intro,omitempty"`
	Outro     []float64 `yaml:"outro,omitempty"`
	Qualities []Quality `yaml:"qualities"`
}

// Quality is a resolution with its mirrors.
type Quality struct {
	Label    string   `yaml:"label"`
	FileSize string   `yaml:"file_size,omitempty"`
	Servers  []Server `yaml:"servers"`
}

// Server is one mirror of a quality.
type Server struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Kind string `yaml:"kind,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Ambient     bool
	StableVoice bool
	AutoAdvance bool
	Volume      float64

	MPVPath       string
	FFmpegPath    string
	MinMPVVersion string

	ProgressDB       string
	ProgressInterval time.Duration

	Episodes []Episode
}

// LoadOptional reads the config file at path if present.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Resolve loads the config file (if present) and resolves defaults.
func Resolve(path string) (*Resolved, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve validates cfg and fills in defaults.
func (cfg *Config) Resolve() (*Resolved, error) {
	r := &Resolved{
		Ambient:     boolOr(cfg.Player.Ambient, false),
		StableVoice: boolOr(cfg.Player.StableVoice, false),
		AutoAdvance: boolOr(cfg.Player.AutoAdvance, true),
		Volume:      1,

		MPVPath:       orDefault(cfg.Backend.MPV, "mpv"),
		FFmpegPath:    orDefault(cfg.Backend.FFmpeg, "ffmpeg"),
		MinMPVVersion: orDefault(cfg.Backend.MinMPVVersion, mpv.MinVersion),

		ProgressDB:       strings.TrimSpace(cfg.Progress.DB),
		ProgressInterval: cfg.Progress.Interval,

		Episodes: cfg.Episodes,
	}
	if cfg.Player.Volume != nil {
		r.Volume = *cfg.Player.Volume
	}
	if r.Volume < 0 || r.Volume > 1 {
		return nil, fmt.Errorf("player.volume must be between 0 and 1 (got %g)", r.Volume)
	}
	if !strings.HasPrefix(r.MinMPVVersion, "v") {
		r.MinMPVVersion = "v" + r.MinMPVVersion
	}
	if !semver.IsValid(r.MinMPVVersion) {
		return nil, fmt.Errorf("backend.min_mpv_version is not a valid version (%q)", cfg.Backend.MinMPVVersion)
	}
	if r.ProgressInterval <= 0 {
		r.ProgressInterval = 5 * time.Second
	}
	if r.ProgressDB == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache directory: %w", err)
		}
		r.ProgressDB = filepath.Join(dir, "driftplay", "progress.db")
	}
	for i, ep := range r.Episodes {
		if err := ep.validate(); err != nil {
			return nil, fmt.Errorf("episodes[%d]: %w", i, err)
		}
	}
	return r, nil
}

func (e Episode) validate() error {
	for _, w := range []struct {
		name string
		span []float64
	}{{"intro", e.Intro}, {"outro", e.Outro}} {
		if w.span == nil {
			continue
		}
		if len(w.span) != 2 || w.span[0] < 0 || w.span[0] >= w.span[1] {
			return fmt.Errorf("%s must be [start, end] with start < end (got %v)", w.name, w.span)
		}
	}
	if len(e.Qualities) == 0 {
		return fmt.Errorf("at least one quality is required")
	}
	for _, q := range e.Qualities {
		if q.Label == "" {
			return fmt.Errorf("quality label is required")
		}
		if len(q.Servers) == 0 {
			return fmt.Errorf("quality %s has no servers", q.Label)
		}
		for _, s := range q.Servers {
			if s.URL == "" {
				return fmt.Errorf("quality %s: server %q has no url", q.Label, s.Name)
			}
		}
	}
	return nil
}

// EpisodesFromURLs turns bare stream URLs into single-quality episodes.
func EpisodesFromURLs(urls []string) []Episode {
	episodes := make([]Episode, 0, len(urls))
	for _, u := range urls {
		episodes = append(episodes, Episode{
			Title: path.Base(u),
			Qualities: []Quality{{
				Label:   "source",
				Servers: []Server{{Name: "direct", URL: u}},
			}},
		})
	}
	return episodes
}

// Key identifies the episode in the progress store.
func (e Episode) Key() string {
	if len(e.Qualities) > 0 && len(e.Qualities[0].Servers) > 0 {
		return e.Title + "|" + e.Qualities[0].Servers[0].URL
	}
	return e.Title
}

// QualityOptions converts the episode's qualities for the player.
func (e Episode) QualityOptions() []player.QualityOption {
	out := make([]player.QualityOption, 0, len(e.Qualities))
	for _, q := range e.Qualities {
		opt := player.QualityOption{Label: q.Label, FileSize: q.FileSize}
		for _, s := range q.Servers {
			opt.Servers = append(opt.Servers, player.ServerOption{
				Name:       orDefault(s.Name, q.Label),
				StreamURL:  s.URL,
				StreamKind: s.Kind,
			})
		}
		out = append(out, opt)
	}
	return out
}

// IntroWindow returns the intro skip window, or nil.
func (e Episode) IntroWindow() *player.SkipWindow { return window(e.Intro) }

// OutroWindow returns the outro skip window, or nil.
func (e Episode) OutroWindow() *player.SkipWindow { return window(e.Outro) }

func window(span []float64) *player.SkipWindow {
	if len(span) != 2 {
		return nil
	}
	return &player.SkipWindow{Start: span[0], End: span[1]}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
