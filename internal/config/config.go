package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NEWS_ANALYZER_CONFIG"
	envFileEnv      = "NEWS_ANALYZER_ENV_FILE"
	defaultEnvFile  = ".env"

	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	httpAddrEnv          = "HTTP_ADDR"
	modelVersionEnv      = "MODEL_VERSION"
	valkeyAddressEnv     = "VALKEY_ADDRESS"
	valkeyPasswordEnv    = "VALKEY_PASSWORD"
	fetchProxyEnv        = "FETCH_PROXY_URL"
	mlServiceURLEnv      = "ML_SERVICE_URL"
	mlAPIKeyEnv          = "ML_API_KEY"
	openAIAPIKeyEnv      = "OPENAI_API_KEY"
	sentimentBackendEnv  = "SENTIMENT_BACKEND"
	sentimentModelEnv    = "SENTIMENT_MODEL_PATH"
	clickbaitBackendEnv  = "CLICKBAIT_BACKEND"
	clickbaitModelEnv    = "CLICKBAIT_MODEL_PATH"
	clickbaitThreshEnv   = "CLICKBAIT_THRESHOLD"
	clickbaitContractEnv = "CLICKBAIT_CONTRACT_VERSION"
	clickbaitDetectorEnv = "CLICKBAIT_DETECTOR_VERSION"
	waterBackendEnv      = "WATER_BACKEND"
	waterContractEnv     = "WATER_CONTRACT_VERSION"
	waterDetectorEnv     = "WATER_DETECTOR_VERSION"
	waterMinLengthEnv    = "WATER_TEXT_MIN_LENGTH"
	waterMaxLengthEnv    = "WATER_TEXT_MAX_LENGTH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Versions  VersionsConfig  `yaml:"versions"`
	Freshness FreshnessConfig `yaml:"freshness"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Sites     []SiteConfig    `yaml:"sites"`
	ML        MLConfig        `yaml:"ml"`
	Models    ModelsConfig    `yaml:"models"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig describes the API listener.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// VersionsConfig holds the contract and model versions echoed by /analysis.
type VersionsConfig struct {
	Contract string `yaml:"contract"`
	Model    string `yaml:"model"`
}

// FreshnessConfig defines the calendar used for article age.
type FreshnessConfig struct {
	Timezone   string         `yaml:"timezone"`
	RecentDays int            `yaml:"recentDays"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the freshness timezone string to a time.Location.
func (f FreshnessConfig) Location() *time.Location {
	if f.location != nil {
		return f.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FetcherConfig controls article downloads.
type FetcherConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	ProxyURL  string        `yaml:"proxyUrl"`
	Browser   BrowserConfig `yaml:"browser"`
	Cache     CacheConfig   `yaml:"cache"`
}

// BrowserConfig tunes the headless Chrome strategy.
type BrowserConfig struct {
	ExecPath string        `yaml:"execPath"`
	WaitFor  string        `yaml:"waitFor"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig points to an optional Valkey instance; empty address disables caching.
type CacheConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// SiteConfig describes a news site with its scanner strategy.
type SiteConfig struct {
	Name      string            `yaml:"name"`
	Scanner   string            `yaml:"scanner"`
	Hosts     []string          `yaml:"hosts"`
	Selectors SelectorConfig    `yaml:"selectors"`
	Options   map[string]string `yaml:"options"`
}

// SelectorConfig holds the CSS selectors of article fields.
type SelectorConfig struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Date    string `yaml:"date"`
	Content string `yaml:"content"`
}

// MLConfig describes the remote model service shared by the "http" backends.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
}

// ModelsConfig selects a backend per model.
type ModelsConfig struct {
	Sentiment SentimentModelConfig `yaml:"sentiment"`
	Clickbait ClickbaitModelConfig `yaml:"clickbait"`
	Water     WaterModelConfig     `yaml:"water"`
}

// SentimentModelConfig backend: hugot | vader | http.
type SentimentModelConfig struct {
	Backend   string `yaml:"backend"`
	ModelPath string `yaml:"modelPath"`
	ModelRepo string `yaml:"modelRepo"`
	MaxChars  int    `yaml:"maxChars"`
}

// ClickbaitModelConfig backend: hugot | openai | http.
type ClickbaitModelConfig struct {
	Backend         string       `yaml:"backend"`
	ModelPath       string       `yaml:"modelPath"`
	ModelRepo       string       `yaml:"modelRepo"`
	Threshold       float64      `yaml:"threshold"`
	PositiveLabel   string       `yaml:"positiveLabel"`
	ContractVersion string       `yaml:"contractVersion"`
	DetectorVersion string       `yaml:"detectorVersion"`
	OpenAI          OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig defines how to contact the OpenAI API.
type OpenAIConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// WaterModelConfig backend: logistic | http.
type WaterModelConfig struct {
	Backend         string    `yaml:"backend"`
	Weights         []float64 `yaml:"weights"`
	Intercept       float64   `yaml:"intercept"`
	ContractVersion string    `yaml:"contractVersion"`
	DetectorVersion string    `yaml:"detectorVersion"`
	TextMinLength   int       `yaml:"textMinLength"`
	TextMaxLength   int       `yaml:"textMaxLength"`
	BatchParallel   int       `yaml:"batchParallel"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	envFile := os.Getenv(envFileEnv)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", envFile, err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := parse(raw, cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

// parse decodes YAML on top of base, so keys absent from the file keep their base value.
func parse(raw []byte, base Config) (Config, error) {
	cfg := base
	cfg.Sites = nil
	cfg.Models.Water.Weights = nil
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, err
	}
	if cfg.Sites == nil {
		cfg.Sites = base.Sites
	}
	if cfg.Models.Water.Weights == nil {
		cfg.Models.Water.Weights = base.Models.Water.Weights
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Logging.Format, logFormatEnv)
	setString(&c.HTTP.Addr, httpAddrEnv)
	setString(&c.Versions.Model, modelVersionEnv)

	setString(&c.Fetcher.Cache.Address, valkeyAddressEnv)
	setString(&c.Fetcher.Cache.Password, valkeyPasswordEnv)
	setString(&c.Fetcher.ProxyURL, fetchProxyEnv)

	setString(&c.ML.InferenceURL, mlServiceURLEnv)
	setString(&c.ML.APIKey, mlAPIKeyEnv)

	setString(&c.Models.Sentiment.Backend, sentimentBackendEnv)
	setString(&c.Models.Sentiment.ModelPath, sentimentModelEnv)

	setString(&c.Models.Clickbait.Backend, clickbaitBackendEnv)
	setString(&c.Models.Clickbait.ModelPath, clickbaitModelEnv)
	setString(&c.Models.Clickbait.ContractVersion, clickbaitContractEnv)
	setString(&c.Models.Clickbait.DetectorVersion, clickbaitDetectorEnv)
	setString(&c.Models.Clickbait.OpenAI.APIKey, openAIAPIKeyEnv)
	if v := os.Getenv(clickbaitThreshEnv); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Models.Clickbait.Threshold = f
		} else {
			log.Printf("config: invalid %s=%q: %v", clickbaitThreshEnv, v, err)
		}
	}

	setString(&c.Models.Water.Backend, waterBackendEnv)
	setString(&c.Models.Water.ContractVersion, waterContractEnv)
	setString(&c.Models.Water.DetectorVersion, waterDetectorEnv)
	setInt(&c.Models.Water.TextMinLength, waterMinLengthEnv)
	setInt(&c.Models.Water.TextMaxLength, waterMaxLengthEnv)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q: %v", env, v, err)
		return
	}
	*dst = n
}

func (c *Config) bindTimezone() {
	tz := c.Freshness.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Freshness.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		HTTP:      HTTPConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Versions:  VersionsConfig{Contract: "0.1.0", Model: "rubert_finetuned_v1"},
		Freshness: FreshnessConfig{Timezone: defaultTimezone, RecentDays: 7, location: tz},
		Fetcher: FetcherConfig{
			Timeout:   20 * time.Second,
			UserAgent: "NewsAnalyzer/1.0",
			Browser:   BrowserConfig{WaitFor: "body", Timeout: 30 * time.Second},
			Cache:     CacheConfig{TTL: time.Hour},
		},
		ML: MLConfig{Timeout: 15 * time.Second, Retries: 3},
		Models: ModelsConfig{
			Sentiment: SentimentModelConfig{Backend: "vader", ModelPath: "./models/rubert_finetuned", MaxChars: 2000},
			Clickbait: ClickbaitModelConfig{
				Backend:         "hugot",
				ModelPath:       "./models/clickbait",
				Threshold:       0.5,
				PositiveLabel:   "кликбейт",
				ContractVersion: "0.1.0",
				DetectorVersion: "clickbait_model_v1",
				OpenAI:          OpenAIConfig{Model: "gpt-4o-mini"},
			},
			Water: WaterModelConfig{
				Backend:         "logistic",
				Weights:         []float64{-0.02, 8.0, 12.0, 6.0},
				Intercept:       -1.5,
				ContractVersion: "1.0.0",
				DetectorVersion: "water-detector-1.0",
				TextMinLength:   20,
				TextMaxLength:   10000,
				BatchParallel:   4,
			},
		},
		Sites: []SiteConfig{
			{
				Name:    "default",
				Scanner: "html",
				Selectors: SelectorConfig{
					Title:   "h1",
					Author:  "[rel=author], .author, meta[name=author]",
					Date:    "time[datetime], meta[property='article:published_time']",
					Content: "article p",
				},
			},
		},
	}
}
