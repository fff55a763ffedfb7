package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ProvisioningConfig controls runtime behavior of tenant provisioning.
// It can be flipped without a restart via provisioning.yml.
type ProvisioningConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	InviteTTLHours int    `mapstructure:"inviteTtlHours"`
	OpsChannel     string `mapstructure:"opsChannel"`
}

func DefaultProvisioningConfig(cfg Config) ProvisioningConfig {
	return ProvisioningConfig{
		Enabled:        cfg.ProvisioningEnabled,
		InviteTTLHours: 72,
		OpsChannel:     cfg.OpsSlackChannel,
	}
}

// ProvisioningConfigHolder holds the current provisioning config and hot
// reloads it when the file changes.
type ProvisioningConfigHolder struct {
	current atomic.Value // holds ProvisioningConfig
}

func NewProvisioningConfigHolder(appCfg Config) (*ProvisioningConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("provisioning")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/praxis/config") // Volume-mounted config
	v.AddConfigPath("/etc/praxis")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("PRAXIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultProvisioningConfig(appCfg)
	v.SetDefault("provisioning.enabled", defaults.Enabled)
	v.SetDefault("provisioning.inviteTtlHours", defaults.InviteTTLHours)
	v.SetDefault("provisioning.opsChannel", defaults.OpsChannel)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg ProvisioningConfig
	if err := v.UnmarshalKey("provisioning", &cfg); err != nil {
		return nil, err
	}
	if err := validateProvisioningConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ProvisioningConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated ProvisioningConfig
			if err := v.UnmarshalKey("provisioning", &updated); err != nil {
				log.Printf("[provisioning-config] reload failed: %v", err)
				return
			}
			if err := validateProvisioningConfig(updated); err != nil {
				log.Printf("[provisioning-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[provisioning-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *ProvisioningConfigHolder) Get() ProvisioningConfig {
	return h.current.Load().(ProvisioningConfig)
}

// Set replaces the current config. Intended for tests.
func (h *ProvisioningConfigHolder) Set(cfg ProvisioningConfig) {
	h.current.Store(cfg)
}

// NewStaticProvisioningConfigHolder returns a holder that never reloads.
func NewStaticProvisioningConfigHolder(cfg ProvisioningConfig) *ProvisioningConfigHolder {
	holder := &ProvisioningConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateProvisioningConfig(cfg ProvisioningConfig) error {
	if cfg.InviteTTLHours <= 0 {
		return errors.New("provisioning.inviteTtlHours must be positive")
	}
	return nil
}
