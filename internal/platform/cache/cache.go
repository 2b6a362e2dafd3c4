// Package cache provee caches de lectura en proceso.
// Son réplicas blandas: nunca son la fuente de verdad y no hay invalidación
// entre procesos; un valor puede quedar viejo hasta que vence su TTL.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache es lo que consumen los services. Keyed por string (pet id, user id).
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, v V)
	TTL() time.Duration
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache es un LRU acotado con vencimiento por entrada.
// El reloj es inyectable para tests deterministas.
type TTLCache[V any] struct {
	lru *lru.Cache[string, entry[V]]
	ttl time.Duration
	now func() time.Time
}

// NewTTL crea un TTLCache. now nil => time.Now. ttl <= 0 => nada se considera fresco.
func NewTTL[V any](size int, ttl time.Duration, now func() time.Time) (*TTLCache[V], error) {
	l, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &TTLCache[V]{lru: l, ttl: ttl, now: now}, nil
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[V]) Set(key string, v V) {
	c.lru.Add(key, entry[V]{value: v, storedAt: c.now()})
}

func (c *TTLCache[V]) TTL() time.Duration { return c.ttl }

func (c *TTLCache[V]) Len() int { return c.lru.Len() }

// Nop nunca guarda nada; toda lectura va al store.
type Nop[V any] struct{}

func (Nop[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (Nop[V]) Set(string, V) {}

func (Nop[V]) TTL() time.Duration { return 0 }
