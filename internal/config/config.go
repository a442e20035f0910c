package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/argusint/argus-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Feeds     []FeedSource    `yaml:"feeds" mapstructure:"feeds"`
	Markets   MarketsConfig   `yaml:"markets" mapstructure:"markets"`
	Cluster   ClusterConfig   `yaml:"cluster" mapstructure:"cluster"`
	Baseline  BaselineConfig  `yaml:"baseline" mapstructure:"baseline"`
	Detector  DetectorConfig  `yaml:"detector" mapstructure:"detector"`
	Hotspots  HotspotsConfig  `yaml:"hotspots" mapstructure:"hotspots"`
	Tables    TablesConfig    `yaml:"tables" mapstructure:"tables"`
	Intervals IntervalsConfig `yaml:"intervals" mapstructure:"intervals"`
	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures the shared HTTP fetcher.
type FetchConfig struct {
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
	MaxConcurrency int    `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// FeedSource describes one RSS/Atom source to ingest.
type FeedSource struct {
	Name     string `yaml:"name" mapstructure:"name"`
	URL      string `yaml:"url" mapstructure:"url"`
	Category string `yaml:"category" mapstructure:"category"`
	Tier     int    `yaml:"tier" mapstructure:"tier"`
	Kind     string `yaml:"kind" mapstructure:"kind"`
}

// MarketsConfig configures the market and prediction-market snapshot clients.
type MarketsConfig struct {
	QuoteURL      string   `yaml:"quote_url" mapstructure:"quote_url"`
	Symbols       []string `yaml:"symbols" mapstructure:"symbols"`
	CryptoURL     string   `yaml:"crypto_url" mapstructure:"crypto_url"`
	CryptoIDs     []string `yaml:"crypto_ids" mapstructure:"crypto_ids"`
	PredictionURL string   `yaml:"prediction_url" mapstructure:"prediction_url"`
}

// ClusterConfig holds the clustering engine tunables.
type ClusterConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	MaxTopSources       int     `yaml:"max_top_sources" mapstructure:"max_top_sources"`
	MinWindowHours      float64 `yaml:"min_window_hours" mapstructure:"min_window_hours"`
	ElevatedPerHour     float64 `yaml:"elevated_per_hour" mapstructure:"elevated_per_hour"`
	SpikePerHour        float64 `yaml:"spike_per_hour" mapstructure:"spike_per_hour"`
}

// BaselineConfig holds the baseline engine tunables.
type BaselineConfig struct {
	Alpha             float64 `yaml:"alpha" mapstructure:"alpha"`
	SpikeZ            float64 `yaml:"spike_z" mapstructure:"spike_z"`
	ElevatedZ         float64 `yaml:"elevated_z" mapstructure:"elevated_z"`
	QuietZ            float64 `yaml:"quiet_z" mapstructure:"quiet_z"`
	ColdStartVariance float64 `yaml:"cold_start_variance" mapstructure:"cold_start_variance"`
}

// DetectorConfig holds the correlation detector tunables.
type DetectorConfig struct {
	PredictionShiftMin  float64 `yaml:"prediction_shift_min" mapstructure:"prediction_shift_min"`
	LowCoverageScore    float64 `yaml:"low_coverage_score" mapstructure:"low_coverage_score"`
	VelocitySpikeScore  float64 `yaml:"velocity_spike_score" mapstructure:"velocity_spike_score"`
	EquityDivergencePct float64 `yaml:"equity_divergence_pct" mapstructure:"equity_divergence_pct"`
	CryptoDivergencePct float64 `yaml:"crypto_divergence_pct" mapstructure:"crypto_divergence_pct"`
	ConfidenceFloor     float64 `yaml:"confidence_floor" mapstructure:"confidence_floor"`
	DedupeWindowMins    int     `yaml:"dedupe_window_mins" mapstructure:"dedupe_window_mins"`
	MaxHistory          int     `yaml:"max_history" mapstructure:"max_history"`
}

// HotspotsConfig points at the hotspot definitions file.
type HotspotsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// TablesConfig points at the keyword tables file.
type TablesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// IntervalsConfig holds the per-domain refresh intervals.
type IntervalsConfig struct {
	FeedsSecs    int `yaml:"feeds_secs" mapstructure:"feeds_secs"`
	MarketsSecs  int `yaml:"markets_secs" mapstructure:"markets_secs"`
	SnapshotSecs int `yaml:"snapshot_secs" mapstructure:"snapshot_secs"`
}

// RetentionConfig controls snapshot cleanup.
type RetentionConfig struct {
	SnapshotHours int `yaml:"snapshot_hours" mapstructure:"snapshot_hours"`
}

// FeedInterval returns the feed refresh interval as a duration.
func (c IntervalsConfig) FeedInterval() time.Duration {
	return time.Duration(c.FeedsSecs) * time.Second
}

// MarketInterval returns the market refresh interval as a duration.
func (c IntervalsConfig) MarketInterval() time.Duration {
	return time.Duration(c.MarketsSecs) * time.Second
}

// SourceTiers derives the source-name to tier table from the feed list.
func (c *Config) SourceTiers() map[string]int {
	tiers := make(map[string]int, len(c.Feeds))
	for _, f := range c.Feeds {
		tiers[f.Name] = f.Tier
	}
	return tiers
}

// SourceCategories derives the source-name to category table from the feed list.
func (c *Config) SourceCategories() map[string]model.SourceCategory {
	cats := make(map[string]model.SourceCategory, len(c.Feeds))
	for _, f := range c.Feeds {
		kind := model.SourceCategory(f.Kind)
		switch kind {
		case model.SourceWire, model.SourceGov, model.SourceIntel,
			model.SourceMainstream, model.SourceMarket, model.SourceTech:
		default:
			kind = model.SourceOther
		}
		cats[f.Name] = kind
	}
	return cats
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ARGUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "argus.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.user_agent", "argus-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.max_concurrency", 8)
	v.SetDefault("markets.quote_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("markets.symbols", []string{"SPY", "QQQ", "GLD", "USO", "^VIX"})
	v.SetDefault("markets.crypto_url", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("markets.crypto_ids", []string{"bitcoin", "ethereum"})
	v.SetDefault("markets.prediction_url", "https://gamma-api.polymarket.com/markets")
	v.SetDefault("cluster.similarity_threshold", 0.5)
	v.SetDefault("cluster.max_top_sources", 5)
	v.SetDefault("cluster.min_window_hours", 0.25)
	v.SetDefault("cluster.elevated_per_hour", 3.0)
	v.SetDefault("cluster.spike_per_hour", 6.0)
	v.SetDefault("baseline.alpha", 0.3)
	v.SetDefault("baseline.spike_z", 2.5)
	v.SetDefault("baseline.elevated_z", 1.5)
	v.SetDefault("baseline.quiet_z", 1.5)
	v.SetDefault("baseline.cold_start_variance", 25.0)
	v.SetDefault("detector.prediction_shift_min", 5.0)
	v.SetDefault("detector.low_coverage_score", 10.0)
	v.SetDefault("detector.velocity_spike_score", 15.0)
	v.SetDefault("detector.equity_divergence_pct", 3.0)
	v.SetDefault("detector.crypto_divergence_pct", 5.0)
	v.SetDefault("detector.confidence_floor", 0.6)
	v.SetDefault("detector.dedupe_window_mins", 30)
	v.SetDefault("detector.max_history", 100)
	v.SetDefault("intervals.feeds_secs", 300)
	v.SetDefault("intervals.markets_secs", 60)
	v.SetDefault("intervals.snapshot_secs", 300)
	v.SetDefault("retention.snapshot_hours", 72)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = DefaultFeeds()
	}

	return &cfg, nil
}

// DefaultFeeds returns the built-in feed list used when the config file
// does not declare any sources.
func DefaultFeeds() []FeedSource {
	return []FeedSource{
		{Name: "Reuters", URL: "https://feeds.reuters.com/reuters/topNews", Category: "geopolitics", Tier: 1, Kind: "wire"},
		{Name: "AP", URL: "https://feeds.apnews.com/apnews/topnews", Category: "geopolitics", Tier: 1, Kind: "wire"},
		{Name: "AFP", URL: "https://www.afp.com/en/news/rss", Category: "geopolitics", Tier: 1, Kind: "wire"},
		{Name: "DoD", URL: "https://www.defense.gov/DesktopModules/ArticleCS/RSS.ashx?max=20", Category: "military", Tier: 1, Kind: "gov"},
		{Name: "State Dept", URL: "https://www.state.gov/rss-feed/press-releases/feed/", Category: "geopolitics", Tier: 1, Kind: "gov"},
		{Name: "Kyiv Independent", URL: "https://kyivindependent.com/feed", Category: "geopolitics", Tier: 2, Kind: "intel"},
		{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Category: "geopolitics", Tier: 2, Kind: "mainstream"},
		{Name: "CNBC", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html", Category: "finance", Tier: 2, Kind: "market"},
		{Name: "MarketWatch", URL: "https://feeds.marketwatch.com/marketwatch/topstories/", Category: "finance", Tier: 3, Kind: "market"},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index", Category: "tech", Tier: 3, Kind: "tech"},
		{Name: "The Register", URL: "https://www.theregister.com/headlines.atom", Category: "tech", Tier: 3, Kind: "tech"},
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
