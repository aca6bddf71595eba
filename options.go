package huffpack

const (
	defaultCodeCacheSize = 128
	defaultZlibLevel     = 9
	defaultZstdLevel     = 19
	defaultBzip2Level    = 9
)

// Logger receives diagnostics from the manager.
type Logger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type config struct {
	algorithms       []Algorithm
	customAlgorithms bool
	defaultAlgorithm string
	logger           Logger
	checksum         bool
	codeCacheSize    int
	zlibLevel        int
	zstdLevel        int
	bzip2Level       int
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:        nopLogger{},
		checksum:      true,
		codeCacheSize: defaultCodeCacheSize,
		zlibLevel:     defaultZlibLevel,
		zstdLevel:     defaultZstdLevel,
		bzip2Level:    defaultBzip2Level,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}
	return cfg
}

// Option is a functional option for configuring a Manager or a codec.
type Option func(*config)

// WithAlgorithms replaces the built-in algorithms with algs.
// With no arguments the manager starts empty and nothing is selected.
func WithAlgorithms(algs ...Algorithm) Option {
	return func(c *config) {
		c.algorithms = algs
		c.customAlgorithms = true
	}
}

// WithDefault selects name after registration instead of the first algorithm.
func WithDefault(name string) Option {
	return func(c *config) {
		c.defaultAlgorithm = name
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithChecksum controls whether Huffman containers carry an xxhash64 of the
// original text. Enabled by default.
func WithChecksum(enabled bool) Option {
	return func(c *config) {
		c.checksum = enabled
	}
}

// WithCodeCacheSize sets how many decoded Huffman code tables are kept.
// Zero disables the cache.
func WithCodeCacheSize(n int) Option {
	return func(c *config) {
		c.codeCacheSize = n
	}
}

// WithZlibLevel sets the zlib level (1-9, or -1 for the library default).
func WithZlibLevel(level int) Option {
	return func(c *config) {
		c.zlibLevel = level
	}
}

// WithZstdLevel sets the zstd level using the reference implementation's 1-22 scale.
func WithZstdLevel(level int) Option {
	return func(c *config) {
		c.zstdLevel = level
	}
}

// WithBzip2Level sets the bzip2 block level (1-9).
func WithBzip2Level(level int) Option {
	return func(c *config) {
		c.bzip2Level = level
	}
}
