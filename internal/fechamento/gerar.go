package fechamento

import (
	"fmt"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
)

// Origem identifica a negociação e as partes dos lançamentos gerados.
type Origem struct {
	EmpresaID      uint
	NegociacaoID   uint
	ClienteID      uint
	ImovelID       uint
	ProprietarioID *uint
	Hoje           time.Time
	Local          *time.Location
}

// ParcelaPrevista é uma linha do cronograma devolvido na simulação.
type ParcelaPrevista struct {
	Numero     int             `json:"numero"`
	Vencimento time.Time       `json:"vencimento"`
	Valor      decimal.Decimal `json:"valor"`
	Repasse    decimal.Decimal `json:"repasse"`
}

// Cronograma distribui parcelas e repasses pelos meses seguintes a hoje.
func Cronograma(r Resultado, hoje time.Time, loc *time.Location) []ParcelaPrevista {
	repasses := dividir(r.ValorRepasse, r.QuantidadeParcelas)
	out := make([]ParcelaPrevista, r.QuantidadeParcelas)
	for i := range out {
		out[i] = ParcelaPrevista{
			Numero:     i + 1,
			Vencimento: Vencimento(hoje, i+1, r.DiaVencimento, loc),
			Valor:      r.ValorParcela,
			Repasse:    repasses[i],
		}
	}
	return out
}

// GerarTransacoes monta a entrada (se houver), as N parcelas de receita e os
// N repasses ao proprietário. Linhas de valor zero não são geradas.
func GerarTransacoes(r Resultado, o Origem) []financeiro.Transacao {
	negID, cliID, imID := o.NegociacaoID, o.ClienteID, o.ImovelID
	base := func(desc string, tipo models.TipoTransacao, valor decimal.Decimal, venc time.Time) financeiro.Transacao {
		return financeiro.Transacao{
			EmpresaID:      o.EmpresaID,
			Descricao:      desc,
			Tipo:           tipo,
			Status:         models.TransacaoPendente,
			Valor:          valor,
			DataVencimento: venc,
			NegociacaoID:   &negID,
			ImovelID:       &imID,
			Categoria:      string(r.TipoNegocio),
		}
	}

	out := make([]financeiro.Transacao, 0, 1+2*r.QuantidadeParcelas)
	if r.ValorEntrada.IsPositive() {
		t := base(fmt.Sprintf("Entrada da negociação #%d", negID), models.TipoReceita, r.ValorEntrada, utils.InicioDoDia(o.Hoje, o.Local))
		t.ClienteID = &cliID
		out = append(out, t)
	}
	for _, p := range Cronograma(r, o.Hoje, o.Local) {
		if p.Valor.IsPositive() {
			t := base(fmt.Sprintf("Parcela %d/%d da negociação #%d", p.Numero, r.QuantidadeParcelas, negID), models.TipoReceita, p.Valor, p.Vencimento)
			t.ClienteID = &cliID
			t.ParcelaNumero, t.TotalParcelas = p.Numero, r.QuantidadeParcelas
			out = append(out, t)
		}
		if p.Repasse.IsPositive() {
			rep := base(fmt.Sprintf("Repasse ao proprietário %d/%d da negociação #%d", p.Numero, r.QuantidadeParcelas, negID), models.TipoDespesa, p.Repasse, p.Vencimento)
			rep.ClienteID = o.ProprietarioID
			rep.ParcelaNumero, rep.TotalParcelas = p.Numero, r.QuantidadeParcelas
			out = append(out, rep)
		}
	}
	return out
}
