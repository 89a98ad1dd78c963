package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/services/kingdom"
)

// BotConfig holds the kingdom table and plugin overrides
type BotConfig struct {
	Kingdoms       []KingdomEntry `yaml:"kingdoms"`
	NativeKingdoms []string       `yaml:"native_kingdoms"`
	Plugins        []PluginEntry  `yaml:"plugins,omitempty"`
}

// KingdomEntry maps a group-name fragment to a kingdom
type KingdomEntry struct {
	Group string `yaml:"group"`
	Name  string `yaml:"name"`
}

// PluginEntry overrides a built-in plugin by name
type PluginEntry struct {
	Name     string `yaml:"name"`
	Priority *int   `yaml:"priority,omitempty"`
	Disabled bool   `yaml:"disabled"`
}

// LoadBotConfig reads the YAML file at path. An empty path yields the defaults.
func LoadBotConfig(path string) (BotConfig, error) {
	cfg := defaultBotConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	name := filepath.Base(path)

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fileCfg BotConfig
	if err := yaml.Unmarshal(b, &fileCfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	// Sections left out of the file keep their defaults
	if fileCfg.Kingdoms != nil {
		cfg.Kingdoms = fileCfg.Kingdoms
	}
	if fileCfg.NativeKingdoms != nil {
		cfg.NativeKingdoms = fileCfg.NativeKingdoms
	}
	cfg.Plugins = fileCfg.Plugins

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

func defaultBotConfig() BotConfig {
	cfg := BotConfig{}
	for _, m := range kingdom.DefaultMappings {
		cfg.Kingdoms = append(cfg.Kingdoms, KingdomEntry{Group: m.Group, Name: string(m.Kingdom)})
	}
	for _, k := range kingdom.DefaultNativeNames {
		cfg.NativeKingdoms = append(cfg.NativeKingdoms, string(k))
	}
	return cfg
}

// Normalize trims whitespace from every entry
func (c *BotConfig) Normalize() {
	for i := range c.Kingdoms {
		c.Kingdoms[i].Group = strings.TrimSpace(c.Kingdoms[i].Group)
		c.Kingdoms[i].Name = strings.TrimSpace(c.Kingdoms[i].Name)
	}
	for i := range c.NativeKingdoms {
		c.NativeKingdoms[i] = strings.TrimSpace(c.NativeKingdoms[i])
	}
	for i := range c.Plugins {
		c.Plugins[i].Name = strings.TrimSpace(c.Plugins[i].Name)
	}
}

// Validate rejects empty or duplicate entries
func (c BotConfig) Validate() error {
	seen := map[string]bool{}
	for i, k := range c.Kingdoms {
		if k.Group == "" || k.Name == "" {
			return fmt.Errorf("kingdoms[%d]: group and name are required", i)
		}
		key := strings.ToUpper(k.Group)
		if seen[key] {
			return fmt.Errorf("kingdoms[%d]: duplicate group %q", i, k.Group)
		}
		seen[key] = true
	}
	for i, n := range c.NativeKingdoms {
		if n == "" {
			return fmt.Errorf("native_kingdoms[%d]: empty name", i)
		}
	}
	plugins := map[string]bool{}
	for i, p := range c.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugins[%d]: name is required", i)
		}
		if plugins[p.Name] {
			return fmt.Errorf("plugins[%d]: duplicate plugin %q", i, p.Name)
		}
		plugins[p.Name] = true
	}
	return nil
}

// Resolver builds the kingdom resolver for this table
func (c BotConfig) Resolver() *kingdom.Resolver {
	mappings := make([]kingdom.Mapping, 0, len(c.Kingdoms))
	for _, k := range c.Kingdoms {
		mappings = append(mappings, kingdom.Mapping{Group: k.Group, Kingdom: model.Kingdom(k.Name)})
	}
	native := make([]model.Kingdom, 0, len(c.NativeKingdoms))
	for _, n := range c.NativeKingdoms {
		native = append(native, model.Kingdom(n))
	}
	return kingdom.NewResolver(mappings, native)
}

// PluginOverrides converts the plugin section for the registry
func (c BotConfig) PluginOverrides() []plugin.Override {
	out := make([]plugin.Override, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		out = append(out, plugin.Override{Name: p.Name, Priority: p.Priority, Disabled: p.Disabled})
	}
	return out
}
