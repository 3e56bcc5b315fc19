package controller

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry[T any] struct {
	value   T
	owner   string
	expires time.Time
}

// PageRegistry menyimpan sesi halaman di memori, terikat ke pemiliknya
// (sekolah + user) dan kedaluwarsa setelah TTL tanpa akses.
type PageRegistry[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*registryEntry[T]
	now   func() time.Time
}

func NewPageRegistry[T any](ttl time.Duration) *PageRegistry[T] {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PageRegistry[T]{
		ttl:   ttl,
		items: make(map[string]*registryEntry[T]),
		now:   time.Now,
	}
}

func (r *PageRegistry[T]) Put(owner string, v T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.items[id] = &registryEntry[T]{value: v, owner: owner, expires: r.now().Add(r.ttl)}
	return id
}

// Get memperpanjang TTL setiap kali halaman diakses pemiliknya.
func (r *PageRegistry[T]) Get(id, owner string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	e, ok := r.items[id]
	if !ok || e.owner != owner {
		return zero, false
	}
	now := r.now()
	if now.After(e.expires) {
		delete(r.items, id)
		return zero, false
	}
	e.expires = now.Add(r.ttl)
	return e.value, true
}

func (r *PageRegistry[T]) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// Sweep membuang sesi kedaluwarsa, mengembalikan jumlah yang dibuang.
func (r *PageRegistry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, e := range r.items {
		if now.After(e.expires) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

func (r *PageRegistry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
