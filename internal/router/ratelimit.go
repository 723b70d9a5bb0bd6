package router

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiteIP struct {
	limiter *rate.Limiter
	visto   time.Time
}

// RateLimiter limita requisições por IP nas rotas públicas.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiteIP
	rate     rate.Limit
	burst    int
	logger   *zap.Logger
}

func NewRateLimiter(rps, burst int, logger *zap.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiteIP),
		rate:     rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(chave string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[chave]
	if !ok {
		l = &limiteIP{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[chave] = l
	}
	l.visto = time.Now()
	return l.limiter
}

func chaveIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chave := chaveIP(r)
		if !rl.limiter(chave).Allow() {
			rl.logger.Warn("rate limit excedido", zap.String("ip", chave), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "1")
			utils.WriteError(w, http.StatusTooManyRequests, "muitas requisições, tente novamente em instantes")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Limpar descarta limitadores sem uso há mais de `ocioso`, até ctx ser cancelado.
func (rl *RateLimiter) Limpar(ctx context.Context, intervalo, ocioso time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case agora := <-ticker.C:
			rl.mu.Lock()
			for k, l := range rl.limiters {
				if agora.Sub(l.visto) > ocioso {
					delete(rl.limiters, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}
