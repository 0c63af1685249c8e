package inmemory

import (
	"context"
	"sync"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
)

type walletInmemoryStore struct {
	wallets map[string]*domain.Wallet
	lock    *sync.RWMutex
}

type walletRepository struct {
	store            *walletInmemoryStore
	chEvents         chan domain.WalletEvent
	externalChEvents chan domain.WalletEvent
	chLock           *sync.Mutex
}

func NewWalletRepository() domain.WalletRepository {
	return newWalletRepository()
}

func newWalletRepository() *walletRepository {
	return &walletRepository{
		store: &walletInmemoryStore{
			wallets: make(map[string]*domain.Wallet),
			lock:    &sync.RWMutex{},
		},
		chEvents:         make(chan domain.WalletEvent),
		externalChEvents: make(chan domain.WalletEvent),
		chLock:           &sync.Mutex{},
	}
}

func (r *walletRepository) CreateWallet(
	ctx context.Context, wallet *domain.Wallet,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.wallets[wallet.Name]; ok {
		return domain.ErrWalletAlreadyExisting
	}

	r.store.wallets[wallet.Name] = wallet

	go r.publishEvent(domain.WalletEvent{
		EventType:  domain.WalletCreated,
		WalletName: wallet.Name,
	})

	return nil
}

func (r *walletRepository) GetWallet(
	ctx context.Context, name string,
) (*domain.Wallet, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	wallet, ok := r.store.wallets[name]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return wallet, nil
}

func (r *walletRepository) ListWallets(
	ctx context.Context,
) ([]*domain.Wallet, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	wallets := make([]*domain.Wallet, 0, len(r.store.wallets))
	for _, wallet := range r.store.wallets {
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (r *walletRepository) UpdateWallet(
	ctx context.Context, name string,
	updateFn func(*domain.Wallet) (*domain.Wallet, error),
) error {
	wallet, err := r.GetWallet(ctx, name)
	if err != nil {
		return err
	}

	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	updatedWallet, err := updateFn(wallet)
	if err != nil {
		return err
	}

	r.store.wallets[name] = updatedWallet
	return nil
}

func (r *walletRepository) AddCosignerToWallet(
	ctx context.Context, name string,
	record *cosigner.Cosigner, proofSig []byte,
) (*cosigner.Cosigner, error) {
	var admitted *cosigner.Cosigner
	var completed bool

	if err := r.UpdateWallet(
		ctx, name, func(w *domain.Wallet) (*domain.Wallet, error) {
			c, err := w.AddCosigner(record, proofSig)
			if err != nil {
				return nil, err
			}

			admitted = c
			completed = w.IsComplete()
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	go r.publishEvent(domain.WalletEvent{
		EventType:  domain.WalletCosignerJoined,
		WalletName: name,
		CosignerID: admitted.ID(),
	})

	if completed {
		go r.publishEvent(domain.WalletEvent{
			EventType:  domain.WalletCompleted,
			WalletName: name,
		})
	}

	return admitted, nil
}

func (r *walletRepository) DeleteWallet(
	ctx context.Context, name string,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.wallets[name]; !ok {
		return domain.ErrWalletNotFound
	}

	delete(r.store.wallets, name)

	go r.publishEvent(domain.WalletEvent{
		EventType:  domain.WalletDeleted,
		WalletName: name,
	})

	return nil
}

func (r *walletRepository) GetEventChannel() chan domain.WalletEvent {
	return r.externalChEvents
}

func (r *walletRepository) publishEvent(event domain.WalletEvent) {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	r.chEvents <- event
	// send over channel without blocking in case nobody is listening.
	select {
	case r.externalChEvents <- event:
	default:
	}
}

func (r *walletRepository) close() {
	close(r.chEvents)
	close(r.externalChEvents)
}
