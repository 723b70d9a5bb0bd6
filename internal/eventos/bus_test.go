package eventos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receber(t *testing.T, a *Assinatura) Evento {
	t.Helper()
	select {
	case ev := <-a.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("evento não chegou")
	}
	return Evento{}
}

func TestBusFiltraPorEmpresa(t *testing.T) {
	bus := NewBus(4, nil, zap.NewNop())
	a1 := bus.Assinar(1)
	a2 := bus.Assinar(2)
	todas := bus.Assinar(0)
	defer a1.Cancelar()
	defer a2.Cancelar()
	defer todas.Cancelar()

	bus.Publicar(context.Background(), Evento{Tipo: LeadCriado, EmpresaID: 1})

	ev := receber(t, a1)
	assert.Equal(t, LeadCriado, ev.Tipo)
	assert.False(t, ev.Em.IsZero())
	assert.Equal(t, uint(1), receber(t, todas).EmpresaID)
	assert.Len(t, a2.C, 0)
}

func TestBusNaoBloqueiaAssinanteLento(t *testing.T) {
	bus := NewBus(1, nil, zap.NewNop())
	lento := bus.Assinar(1)
	defer lento.Cancelar()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publicar(context.Background(), Evento{Tipo: AgendamentoCriado, EmpresaID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publicar bloqueou")
	}
	assert.Len(t, lento.C, 1)
}

func TestCancelarEFechar(t *testing.T) {
	bus := NewBus(1, nil, zap.NewNop())
	a := bus.Assinar(1)
	a.Cancelar()
	a.Cancelar()
	_, ok := <-a.C
	assert.False(t, ok)

	b := bus.Assinar(1)
	bus.Fechar()
	_, ok = <-b.C
	assert.False(t, ok)
	b.Cancelar()

	depois := bus.Assinar(1)
	_, ok = <-depois.C
	require.False(t, ok)
	bus.Publicar(context.Background(), Evento{Tipo: LeadCriado, EmpresaID: 1})
}
