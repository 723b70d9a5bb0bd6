// Package cache guarda valores em memória com expiração (TTL).
package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	valor  V
	expira time.Time
}

// TTL é um cache concorrente; a limpeza periódica para quando ctx é cancelado.
type TTL[K comparable, V any] struct {
	mu    sync.RWMutex
	itens map[K]item[V]
	ttl   time.Duration
	agora func() time.Time
}

func New[K comparable, V any](ctx context.Context, ttl time.Duration) *TTL[K, V] {
	c := &TTL[K, V]{
		itens: make(map[K]item[V]),
		ttl:   ttl,
		agora: time.Now,
	}
	go c.limpar(ctx)
	return c
}

// Get devolve o valor e false se ausente ou expirado.
func (c *TTL[K, V]) Get(chave K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.itens[chave]
	if !ok || c.agora().After(it.expira) {
		var zero V
		return zero, false
	}
	return it.valor, true
}

func (c *TTL[K, V]) Set(chave K, valor V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.itens[chave] = item[V]{valor: valor, expira: c.agora().Add(c.ttl)}
}

func (c *TTL[K, V]) Delete(chave K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.itens, chave)
}

// GetOrLoad devolve o valor em cache ou chama load e guarda o resultado.
// Erros de load não são cacheados.
func (c *TTL[K, V]) GetOrLoad(chave K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(chave); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(chave, v)
	return v, nil
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.itens)
}

func (c *TTL[K, V]) limpar(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.removerExpirados()
		}
	}
}

func (c *TTL[K, V]) removerExpirados() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.agora()
	for k, it := range c.itens {
		if now.After(it.expira) {
			delete(c.itens, k)
		}
	}
}
