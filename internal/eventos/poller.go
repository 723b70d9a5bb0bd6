package eventos

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller busca um valor periodicamente. Cada busca recebe um número de
// sequência; um resultado só é entregue se for mais novo que o último
// entregue, então respostas lentas de ciclos anteriores são descartadas.
type Poller[T any] struct {
	Intervalo time.Duration
	Buscar    func(ctx context.Context) (T, error)
	Entregar  func(T)
	Logger    *zap.Logger

	mu       sync.Mutex
	emitida  uint64
	entregue uint64
	wg       sync.WaitGroup
}

// Run dispara uma busca imediatamente e depois a cada intervalo, até ctx ser cancelado.
// Espera as buscas em andamento antes de retornar.
func (p *Poller[T]) Run(ctx context.Context) {
	defer p.wg.Wait()

	p.Disparar(ctx)
	ticker := time.NewTicker(p.Intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Disparar(ctx)
		}
	}
}

// Disparar inicia uma busca em background e devolve seu número de sequência.
func (p *Poller[T]) Disparar(ctx context.Context) uint64 {
	p.mu.Lock()
	p.emitida++
	seq := p.emitida
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		v, err := p.Buscar(ctx)
		if err != nil {
			if ctx.Err() == nil && p.Logger != nil {
				p.Logger.Warn("poller: busca falhou", zap.Uint64("seq", seq), zap.Error(err))
			}
			return
		}
		p.entregarSe(seq, v)
	}()
	return seq
}

func (p *Poller[T]) entregarSe(seq uint64, v T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.entregue {
		return false
	}
	p.entregue = seq
	p.Entregar(v)
	return true
}

// Contadores alimenta os badges do menu (leads novos, visitas pendentes).
type Contadores struct {
	EmpresaID             uint  `json:"empresaId"`
	LeadsNovos            int64 `json:"leadsNovos"`
	AgendamentosPendentes int64 `json:"agendamentosPendentes"`
}

// PublicarContadores devolve o Entregar que publica um CONTADORES por empresa.
func PublicarContadores(pub Publicador) func([]Contadores) {
	return func(lista []Contadores) {
		for _, c := range lista {
			pub.Publicar(context.Background(), Evento{Tipo: ContadoresAtualizados, EmpresaID: c.EmpresaID, Payload: c})
		}
	}
}
