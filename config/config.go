package config

import (
	"errors"
	"os"
	"time"

	"catalogcrawl/oops"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       Env           `yaml:"-"`
	Catalog   CatalogConfig `yaml:"catalog"`
	Crawl     CrawlConfig   `yaml:"crawl"`
	Browser   BrowserConfig `yaml:"browser"`
	Store     StoreConfig   `yaml:"store"`
	Mirror    MirrorConfig  `yaml:"mirror"`
	RunDb     RunDbConfig   `yaml:"run_db"`
	Log       LogConfig     `yaml:"log"`
	Selectors Selectors     `yaml:"selectors"`
}

type Env int

const (
	EnvDevelopment Env = iota
	EnvTesting
	EnvProduction
)

func (e Env) String() string {
	switch e {
	case EnvDevelopment:
		return "development"
	case EnvTesting:
		return "testing"
	case EnvProduction:
		return "production"
	default:
		return "unknown"
	}
}

type CatalogConfig struct {
	BaseUrl    string `yaml:"base_url"`
	Origin     string `yaml:"origin"`
	PageSize   int    `yaml:"page_size"`
	StartParam string `yaml:"start_param"`
	MaxPages   int    `yaml:"max_pages"` // 0 means unbounded
}

type CrawlConfig struct {
	Attempts             int           `yaml:"attempts"`
	RetryBackoff         time.Duration `yaml:"retry_backoff"`
	SettleDelay          time.Duration `yaml:"settle_delay"`
	InterstitialDelay    time.Duration `yaml:"interstitial_delay"`
	WaitTimeout          time.Duration `yaml:"wait_timeout"`
	NavigationTimeout    time.Duration `yaml:"navigation_timeout"`
	DismissInterstitials bool          `yaml:"dismiss_interstitials"`
	FailOnTruncation     bool          `yaml:"fail_on_truncation"`
}

type BrowserConfig struct {
	Bin       string `yaml:"bin"`
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"no_sandbox"`
}

// Location is a file path (.csv or .json) or a postgres:// URL.
type StoreConfig struct {
	Location string `yaml:"location"`
}

// MirrorConfig is disabled while Bucket is empty.
type MirrorConfig struct {
	Bucket             string `yaml:"bucket"`
	Key                string `yaml:"key"`
	Region             string `yaml:"region"`
	AwsAccessKey       string `yaml:"-"`
	AwsSecretAccessKey string `yaml:"-"`
}

func (c MirrorConfig) Enabled() bool {
	return c.Bucket != ""
}

// RunDbConfig is disabled while Path is empty.
type RunDbConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Load starts from the environment's defaults and overlays the YAML file at maybePath, if any.
func Load(maybePath string) (Config, error) {
	cfg, err := forEnv()
	if err != nil {
		return Config{}, err
	}
	if maybePath == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(maybePath)
	if err != nil {
		return Config{}, oops.Wrapf(err, "read config %s", maybePath)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, oops.Wrapf(err, "parse config %s", maybePath)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Catalog.BaseUrl == "" {
		errs = append(errs, errors.New("catalog.base_url is empty"))
	}
	if c.Catalog.PageSize <= 0 {
		errs = append(errs, errors.New("catalog.page_size must be positive"))
	}
	if c.Catalog.MaxPages < 0 {
		errs = append(errs, errors.New("catalog.max_pages must not be negative"))
	}
	if c.Crawl.Attempts <= 0 {
		errs = append(errs, errors.New("crawl.attempts must be positive"))
	}
	if c.Store.Location == "" {
		errs = append(errs, errors.New("store.location is empty"))
	}
	if c.Mirror.Enabled() && c.Mirror.Key == "" {
		errs = append(errs, errors.New("mirror.key is empty while mirror.bucket is set"))
	}
	if len(errs) > 0 {
		return oops.Wrap(errors.Join(errs...))
	}
	return nil
}

func forEnv() (Config, error) {
	if isTesting {
		return testingConfig(), nil
	}

	env, ok := os.LookupEnv("CATALOGCRAWL_ENV")
	if !ok || env != "production" {
		return developmentConfig(), nil
	}

	return productionConfig()
}
