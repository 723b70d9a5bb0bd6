// Package fechamento calcula e registra o fechamento financeiro de uma negociação.
package fechamento

import (
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
)

var cem = decimal.NewFromInt(100)

// Entrada são os parâmetros do fechamento. TaxaAdministracao nula usa a da
// empresa; ValorParcelaFinal positivo substitui a parcela calculada.
type Entrada struct {
	ValorTotal          decimal.Decimal    `json:"valorTotal"`
	ValorEntrada        decimal.Decimal    `json:"valorEntrada"`
	QuantidadeParcelas  int                `json:"quantidadeParcelas"`
	DiaVencimento       int                `json:"diaVencimento"`
	TaxaAdministracao   *decimal.Decimal   `json:"taxaAdministracao"`
	AcrescimoPercentual decimal.Decimal    `json:"acrescimoPercentual"`
	AcrescimoFixo       decimal.Decimal    `json:"acrescimoFixo"`
	ValorParcelaFinal   *decimal.Decimal   `json:"valorParcelaFinal"`
	TipoNegocio         models.TipoNegocio `json:"tipoNegocio"`
	Observacao          string             `json:"observacao"`
}

// Resultado traz os valores derivados, arredondados em centavos.
type Resultado struct {
	ValorTotal               decimal.Decimal    `json:"valorTotal"`
	ValorEntrada             decimal.Decimal    `json:"valorEntrada"`
	QuantidadeParcelas       int                `json:"quantidadeParcelas"`
	DiaVencimento            int                `json:"diaVencimento"`
	TaxaAdministracao        decimal.Decimal    `json:"taxaAdministracao"`
	AcrescimoPercentual      decimal.Decimal    `json:"acrescimoPercentual"`
	AcrescimoFixo            decimal.Decimal    `json:"acrescimoFixo"`
	ValorLiquido             decimal.Decimal    `json:"valorLiquido"`
	ValorParcelaBase         decimal.Decimal    `json:"valorParcelaBase"`
	ValorParcelaComAcrescimo decimal.Decimal    `json:"valorParcelaComAcrescimo"`
	ValorParcela             decimal.Decimal    `json:"valorParcela"`
	ParcelaManual            bool               `json:"parcelaManual"`
	ValorTaxa                decimal.Decimal    `json:"valorTaxa"`
	ValorRepasse             decimal.Decimal    `json:"valorRepasse"`
	TipoNegocio              models.TipoNegocio `json:"tipoNegocio"`
}

// normalizar aplica os limites tolerados antes da validação.
func (e *Entrada) normalizar(diaPadrao int) {
	if e.QuantidadeParcelas < 1 {
		e.QuantidadeParcelas = 1
	}
	if e.DiaVencimento == 0 {
		e.DiaVencimento = diaPadrao
	}
	e.DiaVencimento = limitarDia(e.DiaVencimento)
}

func limitarDia(dia int) int {
	switch {
	case dia < 1:
		return 1
	case dia > 31:
		return 31
	}
	return dia
}

func (e Entrada) validar(taxa decimal.Decimal) error {
	var msgs []string
	if !e.ValorTotal.IsPositive() {
		msgs = append(msgs, "valorTotal deve ser maior que zero")
	}
	if e.ValorEntrada.IsNegative() {
		msgs = append(msgs, "valorEntrada não pode ser negativo")
	}
	if e.ValorEntrada.GreaterThan(e.ValorTotal) {
		msgs = append(msgs, "valorEntrada não pode ser maior que valorTotal")
	}
	if e.AcrescimoPercentual.IsNegative() {
		msgs = append(msgs, "acrescimoPercentual não pode ser negativo")
	}
	if e.AcrescimoFixo.IsNegative() {
		msgs = append(msgs, "acrescimoFixo não pode ser negativo")
	}
	if taxa.IsNegative() || taxa.GreaterThan(cem) {
		msgs = append(msgs, "taxaAdministracao deve estar entre 0 e 100")
	}
	if e.ValorParcelaFinal != nil && e.ValorParcelaFinal.IsNegative() {
		msgs = append(msgs, "valorParcelaFinal não pode ser negativo")
	}
	if e.TipoNegocio != "" && !e.TipoNegocio.Valido() {
		msgs = append(msgs, "tipoNegocio inválido")
	}
	if len(msgs) > 0 {
		return &utils.ErrValidacao{Mensagens: msgs}
	}
	return nil
}

// Calcular aplica as fórmulas do fechamento:
//
//	liquido  = total - entrada
//	base     = liquido / parcelas
//	parcela  = base * (1 + acrescimo%/100) + acrescimoFixo   (manual vence se > 0)
//	taxa     = liquido * taxa%/100
//	repasse  = liquido - taxa
func Calcular(e Entrada, taxa decimal.Decimal, diaPadrao int) (Resultado, error) {
	e.normalizar(diaPadrao)
	if err := e.validar(taxa); err != nil {
		return Resultado{}, err
	}

	n := decimal.NewFromInt(int64(e.QuantidadeParcelas))
	liquido := e.ValorTotal.Sub(e.ValorEntrada)
	base := liquido.Div(n)
	comPct := base.Mul(decimal.NewFromInt(1).Add(e.AcrescimoPercentual.Div(cem)))
	parcela := comPct.Add(e.AcrescimoFixo)
	manual := e.ValorParcelaFinal != nil && e.ValorParcelaFinal.IsPositive()
	if manual {
		parcela = *e.ValorParcelaFinal
	}
	valorTaxa := liquido.Mul(taxa).Div(cem)

	return Resultado{
		ValorTotal:               e.ValorTotal.Round(2),
		ValorEntrada:             e.ValorEntrada.Round(2),
		QuantidadeParcelas:       e.QuantidadeParcelas,
		DiaVencimento:            e.DiaVencimento,
		TaxaAdministracao:        taxa,
		AcrescimoPercentual:      e.AcrescimoPercentual,
		AcrescimoFixo:            e.AcrescimoFixo.Round(2),
		ValorLiquido:             liquido.Round(2),
		ValorParcelaBase:         base.Round(2),
		ValorParcelaComAcrescimo: comPct.Round(2),
		ValorParcela:             parcela.Round(2),
		ParcelaManual:            manual,
		ValorTaxa:                valorTaxa.Round(2),
		ValorRepasse:             liquido.Sub(valorTaxa).Round(2),
		TipoNegocio:              e.TipoNegocio,
	}, nil
}

// Vencimento devolve o dia `dia` do mês `meses` à frente de base. Em meses
// curtos vale o último dia.
func Vencimento(base time.Time, meses, dia int, loc *time.Location) time.Time {
	base = base.In(loc)
	primeiro := time.Date(base.Year(), base.Month()+time.Month(meses), 1, 0, 0, 0, 0, loc)
	ultimo := primeiro.AddDate(0, 1, -1).Day()
	dia = limitarDia(dia)
	if dia > ultimo {
		dia = ultimo
	}
	return time.Date(primeiro.Year(), primeiro.Month(), dia, 0, 0, 0, 0, loc)
}

// dividir reparte total em n partes de centavos; a última absorve a sobra.
func dividir(total decimal.Decimal, n int) []decimal.Decimal {
	partes := make([]decimal.Decimal, n)
	parte := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	soma := decimal.Zero
	for i := 0; i < n-1; i++ {
		partes[i] = parte
		soma = soma.Add(parte)
	}
	partes[n-1] = total.Sub(soma)
	return partes
}
