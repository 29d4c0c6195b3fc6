package transaction

import (
	"fmt"
	"log/slog"
)

// ForName resolves the transaction manager named in environment
// configuration.
func ForName(name string, logger *slog.Logger) (Factory, error) {
	switch name {
	case "", "local":
		return LocalFactory{Logger: logger}, nil
	case "managed":
		return ManagedFactory{CloseConnection: true, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("transaction: unknown transaction manager %q", name)
	}
}
