package tokens

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings are the reloadable parts of token issuance. Signing material
// stays in the environment config; only the lifetimes move at runtime.
type Settings struct {
	AccessTTL  time.Duration `mapstructure:"accessTtl"`
	RefreshTTL time.Duration `mapstructure:"refreshTtl"`
}

func DefaultSettings() Settings {
	return Settings{
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 30 * time.Minute,
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

// NewStaticSettingsHolder wraps fixed settings without file watching.
func NewStaticSettingsHolder(cfg Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(normalizeSettings(cfg))
	return holder
}

func NewSettingsHolder() (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("tokens")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/orgd/config")
	v.AddConfigPath("/etc/orgd")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORGD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSettings()
		v.SetDefault("tokens.accessTtl", defaults.AccessTTL)
		v.SetDefault("tokens.refreshTtl", defaults.RefreshTTL)
	}

	var cfg Settings
	if err := v.UnmarshalKey("tokens", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeSettings(cfg)

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("tokens", &updated); err != nil {
			log.Printf("[tokens-config] reload failed: %v", err)
			return
		}
		holder.current.Store(normalizeSettings(updated))
		log.Printf("[tokens-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func normalizeSettings(cfg Settings) Settings {
	defaults := DefaultSettings()
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaults.AccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaults.RefreshTTL
	}
	return cfg
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}
