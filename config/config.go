package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/echoogrow/dashboard/metrics"
	"github.com/echoogrow/dashboard/narrator"
	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

type Service struct {
	URL string `mapstructure:"url" yaml:"url"`
}
type Services struct {
	Topics        Service `mapstructure:"topics" yaml:"topics"`
	Visualization Service `mapstructure:"visualization" yaml:"visualization"`
}
type Dashboard struct {
	Name      string `mapstructure:"name" yaml:"name"`
	ChildName string `mapstructure:"child_name" yaml:"child_name"`
	Language  string `mapstructure:"language" yaml:"language"`
}
type Data struct {
	Source           string   `mapstructure:"source" yaml:"source"`
	Order            string   `mapstructure:"order" yaml:"order"`
	RequireSentiment bool     `mapstructure:"require_sentiment" yaml:"require_sentiment"`
	TimeLayouts      []string `mapstructure:"time_layouts" yaml:"time_layouts"`
	Timezone         string   `mapstructure:"timezone" yaml:"timezone"`
}
type Topics struct {
	// Classifier is one of mock, keyword or remote.
	Classifier string         `mapstructure:"classifier" yaml:"classifier"`
	Seed       int64          `mapstructure:"seed" yaml:"seed"`
	Catalog    topics.Catalog `mapstructure:"catalog" yaml:"catalog"`
}
type Server struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	CacheSize int    `mapstructure:"cache_size" yaml:"cache_size"`
}
type Snapshot struct {
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}
type Logging struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}
type Root struct {
	Dashboard    Dashboard `mapstructure:"dashboard" yaml:"dashboard"`
	Data         Data      `mapstructure:"data" yaml:"data"`
	EmotionOrder []string  `mapstructure:"emotion_order" yaml:"emotion_order"`
	Topics       Topics    `mapstructure:"topics" yaml:"topics"`
	Services     Services  `mapstructure:"services" yaml:"services"`
	Server       Server    `mapstructure:"server" yaml:"server"`
	Snapshot     Snapshot  `mapstructure:"snapshot" yaml:"snapshot"`
	Logging      Logging   `mapstructure:"logging" yaml:"logging"`
	Paths        struct {
		Outputs string `mapstructure:"outputs" yaml:"outputs"`
	} `mapstructure:"paths" yaml:"paths"`
}

const envPrefix = "ECHOOGROW"

// Load reads cfgFile, or config/<CONFIG_ENV>/config.yaml when cfgFile is
// empty, then applies ECHOOGROW_* environment overrides. A missing default
// config file is not an error.
func Load(cfgFile string) (*Root, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join("config", env))
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if len(cfg.Topics.Catalog) == 0 {
		cfg.Topics.Catalog = topics.DefaultCatalog
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Root {
	v := viper.New()
	setDefaults(v)
	var cfg Root
	_ = v.Unmarshal(&cfg)
	cfg.Topics.Catalog = topics.DefaultCatalog
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dashboard.name", "EchooGrow")
	v.SetDefault("dashboard.child_name", "猫猫")
	v.SetDefault("dashboard.language", "zh")

	v.SetDefault("data.source", "child_report.csv")
	v.SetDefault("data.order", string(records.OrderValidate))
	v.SetDefault("data.require_sentiment", true)
	v.SetDefault("data.time_layouts", records.DefaultTimeLayouts)
	v.SetDefault("data.timezone", "UTC")

	v.SetDefault("emotion_order", metrics.DefaultEmotionOrder)

	v.SetDefault("topics.classifier", "mock")
	v.SetDefault("topics.seed", 0)

	v.SetDefault("services.topics.url", "")
	v.SetDefault("services.visualization.url", "")

	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.cache_size", 0)

	v.SetDefault("snapshot.schedule", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("paths.outputs", "outputs")
}

func (c *Root) Validate() error {
	if c.Data.Source == "" {
		return errors.New("data.source is empty")
	}
	if _, err := records.ParseOrder(c.Data.Order); err != nil {
		return fmt.Errorf("data.order: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("data.timezone: %w", err)
	}
	if _, err := narrator.New(c.Dashboard.Language); err != nil {
		return fmt.Errorf("dashboard.language: %w", err)
	}
	switch c.Topics.Classifier {
	case "mock", "keyword":
	case "remote":
		if c.Services.Topics.URL == "" {
			return errors.New("topics.classifier=remote requires services.topics.url")
		}
	default:
		return fmt.Errorf("topics.classifier %q: must be mock, keyword or remote", c.Topics.Classifier)
	}
	if len(c.Topics.Catalog) < 2 {
		return errors.New("topics.catalog needs at least 2 topics")
	}
	if c.Server.CacheSize < 0 {
		return errors.New("server.cache_size must be >= 0")
	}
	return nil
}

func (c *Root) Location() (*time.Location, error) {
	if c.Data.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Data.Timezone)
}

// LoaderOptions maps the data section onto record loader options.
func (c *Root) LoaderOptions() (records.Options, error) {
	order, err := records.ParseOrder(c.Data.Order)
	if err != nil {
		return records.Options{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return records.Options{}, err
	}
	return records.Options{
		RequireSentiment: c.Data.RequireSentiment,
		TimeLayouts:      c.Data.TimeLayouts,
		Order:            order,
		Location:         loc,
	}, nil
}
