// Package memory содержит встраиваемый движок хранения движка бронирований.
// Первичные записи, реестр доступности и append-only индексы живут под одним
// RWMutex; захват слота выполняется одношаговым compare-and-swap, поэтому
// при конкурентных бронированиях одного слота выигрывает ровно один вызов.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

type ctxKey int

const txKey ctxKey = iota

// Store хранилище движка бронирований в памяти
type Store struct {
	mu        sync.RWMutex
	allocator *Allocator
	now       func() time.Time

	services map[int64]*domain.Service
	bookings map[int64]*domain.Booking
	slots    map[domain.Slot]bool

	// Append-only индексы: записи добавляются в том же атомарном блоке,
	// что и первичная запись, и никогда не удаляются
	categoryServices map[int64][]int64
	providerServices map[int64][]int64
	clientBookings   map[int64][]int64
	providerBookings map[int64][]int64
	serviceBookings  map[int64][]int64
}

// Option настройка хранилища
type Option func(*Store)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore создает пустое хранилище
func NewStore(opts ...Option) *Store {
	s := &Store{
		allocator:        NewAllocator(),
		now:              time.Now,
		services:         make(map[int64]*domain.Service),
		bookings:         make(map[int64]*domain.Booking),
		slots:            make(map[domain.Slot]bool),
		categoryServices: make(map[int64][]int64),
		providerServices: make(map[int64][]int64),
		clientBookings:   make(map[int64][]int64),
		providerBookings: make(map[int64][]int64),
		serviceBookings:  make(map[int64][]int64),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// inTx сообщает, удерживается ли блокировка хранилища менеджером транзакций
func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey).(struct{})
	return ok
}

// acquireWrite берет эксклюзивную блокировку хранилища
// Внутри транзакции блокировку уже держит менеджер, повторный захват не нужен
func (s *Store) acquireWrite(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// acquireRead берет разделяемую блокировку хранилища
func (s *Store) acquireRead(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// TxManager менеджер атомарных блоков поверх хранилища в памяти
// Держит эксклюзивную блокировку на время fn: блок либо виден целиком,
// либо не виден вовсе относительно других операций
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер атомарных блоков
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Do выполняет fn как атомарный блок
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn как атомарный блок
// Эксклюзивная блокировка даёт сериализуемость без повторов
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn как атомарный блок
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		// Вложенный блок выполняется в рамках внешнего
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	return fn(context.WithValue(ctx, txKey, struct{}{}))
}

func copyService(svc *domain.Service) *domain.Service {
	cp := *svc
	return &cp
}

func copyBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	if b.PaymentReference != nil {
		ref := *b.PaymentReference
		cp.PaymentReference = &ref
	}
	return &cp
}
