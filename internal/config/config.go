// Package config loads slurmboard configuration from defaults, an optional
// YAML file, and SLURMBOARD_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the typed effective configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Slurm   SlurmConfig   `mapstructure:"slurm" yaml:"slurm"`
	Spool   SpoolConfig   `mapstructure:"spool" yaml:"spool"`
	Job     JobConfig     `mapstructure:"job" yaml:"job"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Profile string `mapstructure:"profile" yaml:"profile"`
}

type SlurmConfig struct {
	SbatchBin    string        `mapstructure:"sbatch_bin" yaml:"sbatch_bin"`
	SqueueBin    string        `mapstructure:"squeue_bin" yaml:"squeue_bin"`
	SacctBin     string        `mapstructure:"sacct_bin" yaml:"sacct_bin"`
	ScancelBin   string        `mapstructure:"scancel_bin" yaml:"scancel_bin"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

type SpoolConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type JobConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	TimeLimit    string `mapstructure:"time_limit" yaml:"time_limit"`
	SleepSeconds int    `mapstructure:"sleep_seconds" yaml:"sleep_seconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("slurm.sbatch_bin", "sbatch")
	v.SetDefault("slurm.squeue_bin", "squeue")
	v.SetDefault("slurm.sacct_bin", "sacct")
	v.SetDefault("slurm.scancel_bin", "scancel")
	v.SetDefault("slurm.poll_interval", "5s")

	v.SetDefault("spool.dir", "/tmp/slurmboard")

	v.SetDefault("job.name", "sleepy")
	v.SetDefault("job.time_limit", "00:01:00")
	v.SetDefault("job.sleep_seconds", 30)
}

// Load reads configuration. path is an optional explicit config file; when
// empty, slurmboard.yaml is searched in the working directory and
// ~/.config/slurmboard.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SLURMBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("slurmboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/slurmboard")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the poller cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Slurm.PollInterval <= 0 {
		return fmt.Errorf("slurm.poll_interval must be > 0")
	}
	if strings.TrimSpace(c.Spool.Dir) == "" {
		return fmt.Errorf("spool.dir is required")
	}
	if c.Job.SleepSeconds <= 0 {
		return fmt.Errorf("job.sleep_seconds must be > 0")
	}
	return nil
}
