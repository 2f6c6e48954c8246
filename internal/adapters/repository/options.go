package repository

// Default store configuration constants.
const defaultCapacity = 1000

// Option applies a configuration option to a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets how many records the ring retains.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// SQLiteOption applies a configuration option to a SQLiteStore.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	maxRecords int
	verbose    bool
}

// WithMaxRecords caps the table size; older rows are pruned on write. Zero keeps everything.
func WithMaxRecords(n int) SQLiteOption {
	return func(c *sqliteConfig) {
		if n >= 0 {
			c.maxRecords = n
		}
	}
}

// WithSQLLogging enables gorm statement logging.
func WithSQLLogging(enabled bool) SQLiteOption {
	return func(c *sqliteConfig) {
		c.verbose = enabled
	}
}
