package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"merchantIndexer/internal/extract"
)

// MapConfig holds configuration for the offline map command.
type MapConfig struct {
	In        string
	Out       string
	Format    string
	Addresses []string
	LogLevel  string
}

// LoadMap merges config file, environment variables, and flags into MapConfig.
func LoadMap(cfgFile string, flags *pflag.FlagSet) (MapConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("address", []string{extract.DefaultFactoryAddress})
		v.SetDefault("format", "jsonl")
		v.SetDefault("out", "./data/merchants.jsonl")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return MapConfig{}, err
	}

	cfg := MapConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		Format:    strings.ToLower(v.GetString("format")),
		Addresses: getStringSlice(v, "address"),
		LogLevel:  v.GetString("log-level"),
	}
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{extract.DefaultFactoryAddress}
	}

	return cfg, nil
}
