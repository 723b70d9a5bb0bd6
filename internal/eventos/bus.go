// Package eventos distribui avisos de domínio (novo lead, agendamento,
// fechamento...) para streams SSE, webhook e contadores de badge.
package eventos

import (
	"context"
	"sync"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"go.uber.org/zap"
)

type Tipo string

const (
	LeadCriado            Tipo = "LEAD_CRIADO"
	LeadAtualizado        Tipo = "LEAD_ATUALIZADO"
	AgendamentoCriado     Tipo = "AGENDAMENTO_CRIADO"
	AgendamentoAtualizado Tipo = "AGENDAMENTO_ATUALIZADO"
	NegociacaoFechada     Tipo = "NEGOCIACAO_FECHADA"
	NegociacaoEstornada   Tipo = "NEGOCIACAO_ESTORNADA"
	ContadoresAtualizados Tipo = "CONTADORES"
)

type Evento struct {
	Tipo      Tipo      `json:"tipo"`
	EmpresaID uint      `json:"empresaId"`
	Payload   any       `json:"payload,omitempty"`
	Em        time.Time `json:"em"`
}

// Publicador é o que os serviços de domínio recebem.
type Publicador interface {
	Publicar(ctx context.Context, ev Evento)
}

// Nop descarta tudo.
type Nop struct{}

func (Nop) Publicar(context.Context, Evento) {}

// Bus entrega cada evento a todas as assinaturas da empresa. Publicar nunca
// bloqueia: assinante com buffer cheio perde o evento.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]*Assinatura
	proxID  uint64
	buffer  int
	fechado bool

	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewBus(buffer int, metrics *observability.Metrics, logger *zap.Logger) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subs:    make(map[uint64]*Assinatura),
		buffer:  buffer,
		metrics: metrics,
		logger:  logger,
	}
}

// Assinatura recebe eventos em C até Cancelar. EmpresaID 0 recebe de todas.
type Assinatura struct {
	id        uint64
	EmpresaID uint
	C         <-chan Evento
	ch        chan Evento
	bus       *Bus
	once      sync.Once
}

func (b *Bus) Assinar(empresaID uint) *Assinatura {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.proxID++
	ch := make(chan Evento, b.buffer)
	a := &Assinatura{id: b.proxID, EmpresaID: empresaID, C: ch, ch: ch, bus: b}
	if b.fechado {
		close(ch)
		return a
	}
	b.subs[a.id] = a
	return a
}

// Cancelar remove a assinatura e fecha o canal.
func (a *Assinatura) Cancelar() {
	a.once.Do(func() {
		a.bus.mu.Lock()
		defer a.bus.mu.Unlock()
		if _, ok := a.bus.subs[a.id]; ok {
			delete(a.bus.subs, a.id)
			close(a.ch)
		}
	})
}

func (b *Bus) Publicar(_ context.Context, ev Evento) {
	if ev.Em.IsZero() {
		ev.Em = time.Now()
	}
	b.metrics.IncEvento(string(ev.Tipo))

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.fechado {
		return
	}
	for _, a := range b.subs {
		if a.EmpresaID != 0 && a.EmpresaID != ev.EmpresaID {
			continue
		}
		select {
		case a.ch <- ev:
		default:
			b.logger.Debug("evento descartado, assinante lento",
				zap.String("tipo", string(ev.Tipo)), zap.Uint64("assinatura", a.id))
		}
	}
}

// Fechar encerra todas as assinaturas; publicações posteriores são ignoradas.
func (b *Bus) Fechar() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fechado {
		return
	}
	b.fechado = true
	for id, a := range b.subs {
		close(a.ch)
		delete(b.subs, id)
	}
}
