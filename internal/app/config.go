package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"whisper/internal/replay"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "24h" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// ReplayConfig tunes the replay guard.
type ReplayConfig struct {
	MaxAge     Duration `yaml:"max_age"`
	MaxSkew    Duration `yaml:"max_skew"`
	MaxEntries int      `yaml:"max_entries"`
}

// SigningConfig tunes the signing policy gate.
type SigningConfig struct {
	// RequireAuthorization makes every signing request consult the
	// platform authorization collaborator. The CLI has none, so signing
	// is refused while this is set.
	RequireAuthorization bool `yaml:"require_authorization"`
	// MaxPerMinute rate-limits signing; zero disables the limit.
	MaxPerMinute float64 `yaml:"max_per_minute"`
	// Burst allows short signing bursts above the sustained rate.
	Burst int `yaml:"burst"`
}

// DecryptConfig tunes the per-rkid brake on failing decrypts.
type DecryptConfig struct {
	// FailuresPerMinute is the sustained rate of authentication failures
	// tolerated per recipient key; zero disables the throttle.
	FailuresPerMinute float64 `yaml:"failures_per_minute"`
	// FailureBurst is how many failures a key absorbs before throttling.
	FailureBurst int `yaml:"failure_burst"`
}

// Config is the engine configuration, loaded from <home>/config.yaml.
type Config struct {
	Home    string        `yaml:"-"`
	Replay  ReplayConfig  `yaml:"replay"`
	Signing SigningConfig `yaml:"signing"`
	Decrypt DecryptConfig `yaml:"decrypt"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig(home string) Config {
	return Config{
		Home: home,
		Replay: ReplayConfig{
			MaxAge:     Duration(replay.DefaultMaxAge),
			MaxSkew:    Duration(replay.DefaultMaxSkew),
			MaxEntries: replay.DefaultMaxEntries,
		},
		Signing: SigningConfig{
			MaxPerMinute: 0,
			Burst:        5,
		},
		Decrypt: DecryptConfig{
			FailuresPerMinute: 30,
			FailureBurst:      10,
		},
	}
}

// LoadConfig reads <home>/config.yaml over the defaults. A missing file
// is not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)
	raw, err := os.ReadFile(configPath(home))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func configPath(home string) string { return home + "/config.yaml" }
