package sportdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	mongoURI   string
	database   string
	collection string

	addrs     []string
	password  string
	keyPrefix string
	language  string

	fallbackName string
	fallbackLon  float64
	fallbackLat  float64

	maxPageSize int
	workers     int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		database:     "sportdex",
		collection:   "installations",
		keyPrefix:    "sportdex:",
		language:     "french",
		fallbackName: "CARQUEFOU",
		fallbackLon:  -1.49181,
		fallbackLat:  47.2975,
	}
}

// WithMongo configures the document store holding facility records.
func WithMongo(uri, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.mongoURI = uri
		if database != "" {
			c.database = database
		}
	})
}

// WithCollection overrides the record collection name. Default: installations.
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithRedis configures the search engine (Redis 8+ with search and JSON).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the prefix of every search engine key. Default: "sportdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLanguage sets the stemming language of the text index. Default: french.
func WithLanguage(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = lang
	})
}

// WithFallbackTown sets the origin used when a town name cannot be resolved.
// Default: CARQUEFOU.
func WithFallbackTown(name string, lon, lat float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.fallbackName = name
		c.fallbackLon = lon
		c.fallbackLat = lat
	})
}

// WithMaxPageSize caps the page size accepted by List.
func WithMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPageSize = n
	})
}

// WithImportWorkers sets the number of write workers per import pass.
func WithImportWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK and import metrics on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
