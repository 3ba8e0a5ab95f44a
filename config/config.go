package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

const (
	SinkSQL   = "sql"
	SinkKafka = "kafka"
)

type search struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	MaxLimit        int `mapstructure:"max_limit"`
	CandidateFactor int `mapstructure:"candidate_factor"`
	RelatedLimit    int `mapstructure:"related_limit"`
}

type catalog struct {
	FetchLimit int `mapstructure:"fetch_limit"`
}

type analytics struct {
	Sink         string        `mapstructure:"sink"`
	Workers      int           `mapstructure:"workers"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CloseTimeout time.Duration `mapstructure:"close_timeout"`
}

type consumers struct {
	SearchEventsSaverGroup string `mapstructure:"search_events_saver_group"`
	QueryStatsGroup        string `mapstructure:"query_stats_group"`
}

type topics struct {
	SearchEvents string `mapstructure:"search_events"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all certificate files are set.
func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                brokerTLS `mapstructure:"tls"`
}

type Rule struct {
	Label    string   `mapstructure:"label"`
	Keywords []string `mapstructure:"keywords"`
}

type RuleSet struct {
	Version string `mapstructure:"version"`
	Rules   []Rule `mapstructure:"rules"`
}

type Classifier struct {
	Categories RuleSet `mapstructure:"categories"`
	Brands     RuleSet `mapstructure:"brands"`
}

type classifiers struct {
	Search  Classifier `mapstructure:"search"`
	Catalog Classifier `mapstructure:"catalog"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	SQLDB              string        `mapstructure:"sql_db"`
	Search             search        `mapstructure:"search"`
	Catalog            catalog       `mapstructure:"catalog"`
	Analytics          analytics     `mapstructure:"analytics"`
	Broker             broker        `mapstructure:"broker"`
	Classifiers        classifiers   `mapstructure:"classifiers"`
}

// Load reads the file named by STOREFRONT_CONFIG_FILE or --config.
// The process exits on any error.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("http_handler_timeout", "5s")
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)
	v.SetDefault("search.candidate_factor", 3)
	v.SetDefault("search.related_limit", 10)
	v.SetDefault("catalog.fetch_limit", 500)
	v.SetDefault("analytics.sink", SinkSQL)
	v.SetDefault("analytics.workers", 4)
	v.SetDefault("analytics.write_timeout", "2s")
	v.SetDefault("analytics.close_timeout", "5s")
	v.SetDefault("broker.topics.search_events", "search-events")
	v.SetDefault("broker.consumers.search_events_saver_group", "search_events_saver")
	v.SetDefault("broker.consumers.query_stats_group", "query_stats")
}

func (c Config) validate() error {
	if c.SQLDB == "" {
		return errors.New("sql_db is required")
	}

	switch c.Analytics.Sink {
	case SinkSQL:
	case SinkKafka:
		if len(c.Broker.SeedBrokers) == 0 {
			return errors.New("broker.seed_brokers is required for kafka sink")
		}
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			return errors.New(
				"broker.schema_registry_urls is required for kafka sink",
			)
		}
	default:
		return fmt.Errorf("unknown analytics.sink %q", c.Analytics.Sink)
	}

	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit <= 0 {
		return errors.New("search.default_limit and search.max_limit must be positive")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return errors.New("search.max_limit is less than search.default_limit")
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	SQLDB=%q

	Search:
	DefaultLimit=%d
	MaxLimit=%d
	CandidateFactor=%d
	RelatedLimit=%d

	Catalog:
	FetchLimit=%d

	Analytics:
	Sink=%q
	Workers=%d
	WriteTimeout=%s
	CloseTimeout=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		SearchEvents=%q
	Consumers:
		SearchEventsSaverGroup=%q
		QueryStatsGroup=%q

	Classifiers:
	Search: categories=%q (%d rules) brands=%q (%d rules)
	Catalog: categories=%q (%d rules) brands=%q (%d rules)

`
	s, ct := c.Classifiers.Search, c.Classifiers.Catalog
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		redactDSN(c.SQLDB),
		c.Search.DefaultLimit,
		c.Search.MaxLimit,
		c.Search.CandidateFactor,
		c.Search.RelatedLimit,
		c.Catalog.FetchLimit,
		c.Analytics.Sink,
		c.Analytics.Workers,
		c.Analytics.WriteTimeout,
		c.Analytics.CloseTimeout,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.SearchEvents,
		c.Broker.Consumers.SearchEventsSaverGroup,
		c.Broker.Consumers.QueryStatsGroup,
		s.Categories.Version, len(s.Categories.Rules),
		s.Brands.Version, len(s.Brands.Rules),
		ct.Categories.Version, len(ct.Categories.Rules),
		ct.Brands.Version, len(ct.Brands.Rules),
	)
}

// redactDSN hides the password of a URL-style DSN.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
