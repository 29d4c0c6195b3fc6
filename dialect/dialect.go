package dialect

// Dialect abstracts the driver-specific bits of SQL text the runtime emits:
// positional placeholder style and identifier quoting.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	Placeholder(n int) string
}
