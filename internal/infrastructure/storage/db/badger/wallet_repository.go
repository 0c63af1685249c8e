package dbbadger

import (
	"context"
	"fmt"
	"sync"

	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

type walletRepository struct {
	store            *badgerhold.Store
	chEvents         chan domain.WalletEvent
	externalChEvents chan domain.WalletEvent
	lock             *sync.Mutex

	log func(format string, a ...interface{})
}

func NewWalletRepository(store *badgerhold.Store) domain.WalletRepository {
	return newWalletRepository(store)
}

func newWalletRepository(store *badgerhold.Store) *walletRepository {
	chEvents := make(chan domain.WalletEvent, 10)
	externalChEvents := make(chan domain.WalletEvent, 10)
	lock := &sync.Mutex{}
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("wallet repository: %s", format)
		log.Debugf(format, a...)
	}
	return &walletRepository{store, chEvents, externalChEvents, lock, logFn}
}

func (r *walletRepository) CreateWallet(
	ctx context.Context, wallet *domain.Wallet,
) error {
	if err := r.insertWallet(ctx, wallet); err != nil {
		return err
	}

	go r.publishEvent(domain.WalletEvent{
		EventType:  domain.WalletCreated,
		WalletName: wallet.Name,
	})

	return nil
}

func (r *walletRepository) GetWallet(
	ctx context.Context, name string,
) (*domain.Wallet, error) {
	return r.getWallet(ctx, name)
}

func (r *walletRepository) ListWallets(
	ctx context.Context,
) ([]*domain.Wallet, error) {
	var list []domain.Wallet
	var err error

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &list, nil)
	} else {
		err = r.store.Find(&list, nil)
	}
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(list))
	for i := range list {
		wallet := list[i]
		wallets = append(wallets, &wallet)
	}
	return wallets, nil
}

func (r *walletRepository) UpdateWallet(
	ctx context.Context, name string,
	updateFn func(v *domain.Wallet) (*domain.Wallet, error),
) error {
	wallet, err := r.getWallet(ctx, name)
	if err != nil {
		return err
	}

	updatedWallet, err := updateFn(wallet)
	if err != nil {
		return err
	}

	return r.updateWallet(ctx, name, updatedWallet)
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
	var err error

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxDelete(tx, name, domain.Wallet{})
	} else {
		err = r.store.Delete(name, domain.Wallet{})
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrWalletNotFound
		}
		return err
	}

	go r.publishEvent(domain.WalletEvent{
		EventType:  domain.WalletDeleted,
		WalletName: name,
	})

	return nil
}

func (r *walletRepository) GetEventChannel() chan domain.WalletEvent {
	return r.externalChEvents
}

func (r *walletRepository) insertWallet(
	ctx context.Context, wallet *domain.Wallet,
) error {
	var err error

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxInsert(tx, wallet.Name, *wallet)
	} else {
		err = r.store.Insert(wallet.Name, *wallet)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExisting
		}
		return err
	}

	return nil
}

func (r *walletRepository) getWallet(
	ctx context.Context, name string,
) (*domain.Wallet, error) {
	var err error
	var wallet domain.Wallet

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, name, &wallet)
	} else {
		err = r.store.Get(name, &wallet)
	}

	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

func (r *walletRepository) updateWallet(
	ctx context.Context, name string, wallet *domain.Wallet,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpdate(tx, name, *wallet)
	}
	return r.store.Update(name, *wallet)
}

func (r *walletRepository) publishEvent(event domain.WalletEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.log("publish event %s", event.EventType)
	r.chEvents <- event

	// send over channel without blocking in case nobody is listening.
	select {
	case r.externalChEvents <- event:
	default:
	}
}

func (r *walletRepository) close() {
	r.store.Close()
	close(r.chEvents)
	close(r.externalChEvents)
}
