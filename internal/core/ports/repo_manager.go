package ports

import (
	"github.com/Librechain/bmultisig/internal/core/domain"
)

type WalletEventHandler func(event domain.WalletEvent)

// RepoManager is the abstraction for any kind of service intended to manage
// domain repositories implementations of the same concrete type.
type RepoManager interface {
	// WalletRepository returns the wallet repository.
	WalletRepository() domain.WalletRepository

	// RegisterHandlerForWalletEvent registers an handler function, executed
	// whenever the given event type occurs.
	RegisterHandlerForWalletEvent(
		eventType domain.WalletEventType, handler WalletEventHandler,
	)

	// Close closes the connection with all concrete repositories
	// implementations.
	Close()
}
