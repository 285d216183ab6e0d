package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Environment
	IsProd bool `json:"is_prod"`

	// Remote bot API
	API APIConfig `json:"api"`

	// Per-instance supervision cadence and highlight tuning
	Panel PanelConfig `json:"panel"`

	// Stats/settings server
	StatsServer StatsServerConfig `json:"stats_server"`
}

// APIConfig holds the remote bot API configuration.
type APIConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// PanelConfig holds supervision configuration shared by all bot instances.
type PanelConfig struct {
	// Bots lists the instances to supervise. Entries without an ID get one
	// assigned at startup.
	Bots []BotSeed `json:"bots"`

	// RefreshInterval is the trade-history refresh cadence per instance.
	RefreshInterval time.Duration `json:"refresh_interval"`

	// HighlightWindow is how long a trade counts as "recent" for row
	// highlighting after its timestamp.
	HighlightWindow time.Duration `json:"highlight_window"`

	// DecayAnimation is how long the newest-trade emphasis stays on a row
	// before the one-shot timer clears it.
	DecayAnimation time.Duration `json:"decay_animation"`
}

// BotSeed describes one supervised bot instance and the initial values of its
// configuration fields.
type BotSeed struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// StatsServerConfig holds stats/settings server configuration.
type StatsServerConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Panel.Bots != nil {
		clone.Panel.Bots = make([]BotSeed, len(c.Panel.Bots))
		for i, b := range c.Panel.Bots {
			seed := BotSeed{ID: b.ID}
			if b.Fields != nil {
				seed.Fields = make(map[string]string, len(b.Fields))
				for k, v := range b.Fields {
					seed.Fields[k] = v
				}
			}
			clone.Panel.Bots[i] = seed
		}
	}
	return &clone
}

// ToJSON serializes the config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ConfigFromJSON deserializes JSON into a config, merging with base.
func ConfigFromJSON(data []byte, base *Config) (*Config, error) {
	if base == nil {
		base = Defaults()
	}
	cfg := base.Clone()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		IsProd: false,
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Panel: PanelConfig{
			RefreshInterval: 10 * time.Second,
			HighlightWindow: 30 * time.Second,
			DecayAnimation:  3 * time.Second,
		},
		StatsServer: StatsServerConfig{
			Enabled: false,
			Port:    8080,
		},
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() *Config {
	return &Config{
		IsProd: envBool("STAGE", "PROD"),

		API: APIConfig{
			BaseURL: envString("BOT_API_BASE_URL", "http://localhost:5000"),
			Timeout: envDuration("BOT_API_TIMEOUT", 30*time.Second),
		},

		Panel: PanelConfig{
			Bots:            envBots("BOTS"),
			RefreshInterval: envDuration("TRADE_REFRESH_INTERVAL", 10*time.Second),
			HighlightWindow: envDuration("TRADE_HIGHLIGHT_WINDOW", 30*time.Second),
			DecayAnimation:  envDuration("TRADE_DECAY_ANIMATION", 3*time.Second),
		},

		StatsServer: StatsServerConfig{
			Enabled: envBoolDefault("STATS_SERVER_ENABLED", false),
			Port:    envInt("STATS_SERVER_PORT", 8080),
		},
	}
}

// envBots parses the BOTS env var. Two encodings are accepted: a JSON array
// of BotSeed objects, or a comma-separated list of bare instance IDs.
func envBots(key string) []BotSeed {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return nil
	}

	if strings.HasPrefix(val, "[") {
		var seeds []BotSeed
		if err := json.Unmarshal([]byte(val), &seeds); err == nil {
			return seeds
		}
		return nil
	}

	var seeds []BotSeed
	for _, id := range strings.Split(val, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			seeds = append(seeds, BotSeed{ID: id})
		}
	}
	return seeds
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func envBool(key, trueValue string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), trueValue)
}

func envBoolDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1") || strings.EqualFold(v, "yes")
}
