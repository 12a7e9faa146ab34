// Package memory implements the repository ports on in-process maps. It
// exists for tests and demo mode: same contracts as repository/postgres,
// including real transaction semantics — TxManager snapshots the store when
// a scope opens and restores it when the scope fails, so rollback behavior
// can be asserted without a database.
package memory

import (
	"context"
	"sync"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
)

// Store holds all records. One RWMutex guards everything; a transaction
// scope takes the write lock for its whole lifetime, which serializes
// writers in-process.
type Store struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]model.Product
	movements []model.InventoryMovement
	sales     map[uuid.UUID]model.Sale
	customers map[uuid.UUID]model.Customer
	history   []model.PriceHistory
	folioSeq  int
}

func NewStore() *Store {
	return &Store{
		products:  make(map[uuid.UUID]model.Product),
		sales:     make(map[uuid.UUID]model.Sale),
		customers: make(map[uuid.UUID]model.Customer),
	}
}

// New binds the port bundle to s. Reads and writes outside a scope lock per
// call; inside TxManager.Run the bundle shares the scope's lock.
func New(s *Store) repository.Repos {
	r := bind(&session{store: s, locking: true})
	r.Tx = &TxManager{store: s}
	return r
}

func bind(ss *session) repository.Repos {
	return repository.Repos{
		Products:     &productRepo{ss},
		Inventory:    &inventoryRepo{ss},
		Sales:        &saleRepo{ss},
		Customers:    &customerRepo{ss},
		PriceHistory: &priceHistoryRepo{ss},
	}
}

// session is the access mode repos run under. With locking set each call
// takes the store lock itself; inside a transaction the scope owns the lock
// and the repos run lock-free.
type session struct {
	store   *Store
	locking bool
}

func (ss *session) rlock() func() {
	if !ss.locking {
		return func() {}
	}
	ss.store.mu.RLock()
	return ss.store.mu.RUnlock
}

func (ss *session) lock() func() {
	if !ss.locking {
		return func() {}
	}
	ss.store.mu.Lock()
	return ss.store.mu.Unlock
}

// TxManager implements the unit of work over the store. Run takes the write
// lock, snapshots all state, and restores the snapshot when fn fails.
// Nested managers join the open scope: no second snapshot, no early commit.
type TxManager struct {
	store *Store
	inTx  bool
}

func (m *TxManager) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if m.inTx {
		r := bind(&session{store: m.store})
		r.Tx = m
		return fn(r)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	r := bind(&session{store: m.store})
	r.Tx = &TxManager{store: m.store, inTx: true}

	if err := fn(r); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// snapshot deep-copies the store state. Model values are copied by value;
// the Items slice is the only nested mutable structure and gets its own copy.
type snapshotState struct {
	products  map[uuid.UUID]model.Product
	movements []model.InventoryMovement
	sales     map[uuid.UUID]model.Sale
	customers map[uuid.UUID]model.Customer
	history   []model.PriceHistory
	folioSeq  int
}

func (s *Store) snapshot() snapshotState {
	snap := snapshotState{
		products:  make(map[uuid.UUID]model.Product, len(s.products)),
		movements: make([]model.InventoryMovement, len(s.movements)),
		sales:     make(map[uuid.UUID]model.Sale, len(s.sales)),
		customers: make(map[uuid.UUID]model.Customer, len(s.customers)),
		history:   make([]model.PriceHistory, len(s.history)),
		folioSeq:  s.folioSeq,
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	copy(snap.movements, s.movements)
	for id, sl := range s.sales {
		snap.sales[id] = copySale(sl)
	}
	for id, c := range s.customers {
		snap.customers[id] = c
	}
	copy(snap.history, s.history)
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.products = snap.products
	s.movements = snap.movements
	s.sales = snap.sales
	s.customers = snap.customers
	s.history = snap.history
	s.folioSeq = snap.folioSeq
}

func copySale(s model.Sale) model.Sale {
	out := s
	out.Items = make([]model.SaleItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
