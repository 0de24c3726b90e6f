package memory

import "sync"

// Allocator выделяет уникальные строго возрастающие идентификаторы
// Общий для услуг и бронирований, нумерация с 1, без повторного
// использования значений
type Allocator struct {
	mu   sync.Mutex
	next int64
}

// NewAllocator создает аллокатор идентификаторов
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Next возвращает следующий идентификатор
func (a *Allocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	return id
}
