package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ServiceEntry registers one service of the fleet: its id, the path of its
// manifest, and optionally the container resource patches address (defaults
// to the service id).
type ServiceEntry struct {
	Name      string `mapstructure:"name"`
	Manifest  string `mapstructure:"manifest"`
	Container string `mapstructure:"container"`
}

type Config struct {
	Namespace  string
	KubeConfig string
	KubeMaster string
	BackupDir  string
	LogLevel   string
	LogFormat  string
	HTTPPort   string
	Services   []ServiceEntry
}

// Load reads the config file (explicit path, or ./reconfigurer.yaml when path
// is empty) with RECONF_* environment overrides for the scalar settings. The
// fleet registry comes from the file only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("namespace", "default")
	v.SetDefault("backupDir", "backup")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.port", "8080")
	v.SetDefault("kubeconfig", os.Getenv(envKeyKubeConfigFallback))
	v.SetDefault("kubeMaster", os.Getenv(envKeyKubeMasterFallback))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Namespace:  v.GetString("namespace"),
		KubeConfig: v.GetString("kubeconfig"),
		KubeMaster: v.GetString("kubeMaster"),
		BackupDir:  v.GetString("backupDir"),
		LogLevel:   v.GetString("log.level"),
		LogFormat:  v.GetString("log.format"),
		HTTPPort:   v.GetString("http.port"),
	}

	if err := v.UnmarshalKey("services", &cfg.Services); err != nil {
		return nil, fmt.Errorf("parse services registry: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Services))

	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("services registry: entry with empty name")
		}

		if svc.Manifest == "" {
			return fmt.Errorf("services registry: %s has no manifest path", svc.Name)
		}

		if _, dup := seen[svc.Name]; dup {
			return fmt.Errorf("services registry: duplicate service %s", svc.Name)
		}

		seen[svc.Name] = struct{}{}
	}

	return nil
}
