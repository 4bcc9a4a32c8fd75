// Package config resolves run options from command-line flags and an optional
// YAML file. Flags that were set win over the file, the file over defaults.
// Environment variables are not consulted.
package config

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tiffs2pdfs/contracts"
)

const (
	keyLogLevel      = "log_level"
	keyLogFile       = "log_file"
	keyLogMaxSizeMB  = "log_max_size_mb"
	keyLogMaxBackups = "log_max_backups"
	keyLogMaxAgeDays = "log_max_age_days"
	keyLogCompress   = "log_compress"

	flagConfig = "config"
)

var flagKeys = map[string]string{
	"log-level": keyLogLevel,
	"log-file":  keyLogFile,
}

// RegisterFlags adds the option flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "YAML config file")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-file", "", "also write JSON logs to this file, rotated by size")
}

func defaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyLogMaxSizeMB, 100)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyLogMaxAgeDays, 28)
	v.SetDefault(keyLogCompress, false)
}

// Load reads the options registered by RegisterFlags.
func Load(fs *pflag.FlagSet) (contracts.InputFlags, error) {
	v := viper.New()
	defaults(v)
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return contracts.InputFlags{}, fmt.Errorf("error binding flag %s: %w", name, err)
			}
		}
	}

	if path, _ := fs.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return contracts.InputFlags{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	flags := contracts.InputFlags{
		ConfigFile:    v.ConfigFileUsed(),
		LogLevel:      v.GetString(keyLogLevel),
		LogFile:       v.GetString(keyLogFile),
		LogMaxSizeMB:  v.GetInt(keyLogMaxSizeMB),
		LogMaxBackups: v.GetInt(keyLogMaxBackups),
		LogMaxAgeDays: v.GetInt(keyLogMaxAgeDays),
		LogCompress:   v.GetBool(keyLogCompress),
	}
	if err := validate(flags); err != nil {
		return contracts.InputFlags{}, err
	}
	return flags, nil
}

func validate(flags contracts.InputFlags) error {
	if _, err := zerolog.ParseLevel(flags.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", flags.LogLevel)
	}
	if flags.LogMaxSizeMB < 0 || flags.LogMaxBackups < 0 || flags.LogMaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}
