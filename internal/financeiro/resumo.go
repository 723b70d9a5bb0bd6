package financeiro

import (
	"context"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var emAberto = []models.StatusTransacao{models.TransacaoPendente, models.TransacaoAtrasado}

// CalcularResumo soma os cards do período [inicio, fim) com as consultas em paralelo.
func CalcularResumo(ctx context.Context, db *gorm.DB, repo Repository, empresaID uint, inicio, fim time.Time) (*Resumo, error) {
	res := &Resumo{Inicio: inicio, Fim: fim}
	g, gctx := errgroup.WithContext(ctx)

	somar := func(dst *decimal.Decimal, tipo models.TipoTransacao, status []models.StatusTransacao, campo string) {
		g.Go(func() error {
			v, err := repo.Somar(db.WithContext(gctx), empresaID, tipo, status, campo, inicio, fim)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}
	somar(&res.ReceitasRecebidas, models.TipoReceita, []models.StatusTransacao{models.TransacaoPago}, "data_pagamento")
	somar(&res.DespesasPagas, models.TipoDespesa, []models.StatusTransacao{models.TransacaoPago}, "data_pagamento")
	somar(&res.AReceber, models.TipoReceita, emAberto, "data_vencimento")
	somar(&res.APagar, models.TipoDespesa, emAberto, "data_vencimento")
	somar(&res.Atrasado, models.TipoReceita, []models.StatusTransacao{models.TransacaoAtrasado}, "data_vencimento")

	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Saldo = res.ReceitasRecebidas.Sub(res.DespesasPagas)
	return res, nil
}
