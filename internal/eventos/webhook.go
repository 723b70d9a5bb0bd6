package eventos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Webhook reenvia os eventos do barramento para uma URL externa.
type Webhook struct {
	URL            string
	Client         *http.Client
	Breaker        *gobreaker.CircuitBreaker
	MaxTentativas  int
	BackoffInicial time.Duration
	Logger         *zap.Logger
}

func NewWebhook(url string, logger *zap.Logger) *Webhook {
	return &Webhook{
		URL:            url,
		Client:         &http.Client{Timeout: 5 * time.Second},
		Breaker:        novoBreaker("webhook"),
		MaxTentativas:  3,
		BackoffInicial: 200 * time.Millisecond,
		Logger:         logger,
	}
}

func novoBreaker(nome string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        nome,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
}

// Run consome o barramento até ctx ser cancelado. Eventos de contadores ficam de fora.
func (wh *Webhook) Run(ctx context.Context, bus *Bus) {
	sub := bus.Assinar(0)
	defer sub.Cancelar()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if ev.Tipo == ContadoresAtualizados {
				continue
			}
			if err := wh.Enviar(ctx, ev); err != nil {
				wh.Logger.Warn("webhook falhou", zap.String("tipo", string(ev.Tipo)), zap.Error(err))
			}
		}
	}
}

// Enviar faz POST do evento com retentativas, atrás do circuit breaker.
func (wh *Webhook) Enviar(ctx context.Context, ev Evento) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = wh.Breaker.Execute(func() (interface{}, error) {
		return nil, tentarComBackoff(ctx, wh.MaxTentativas, wh.BackoffInicial, func() error {
			return wh.post(ctx, body)
		})
	})
	return err
}

func (wh *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := wh.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	return nil
}

// tentarComBackoff executa fn até tentativas vezes, com espera exponencial e jitter.
func tentarComBackoff(ctx context.Context, tentativas int, inicial time.Duration, fn func() error) error {
	if tentativas < 1 {
		tentativas = 1
	}
	var lastErr error
	for i := 0; i < tentativas; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == tentativas-1 {
			break
		}
		espera := time.Duration(math.Pow(2, float64(i))) * inicial
		if espera/2 > 0 {
			espera += time.Duration(rand.Int63n(int64(espera / 2)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(espera):
		}
	}
	return lastErr
}
