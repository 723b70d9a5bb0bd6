package financeiro

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moedaBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatarMoeda devolve "R$ 1.234,56".
func FormatarMoeda(v decimal.Decimal) string {
	return moedaBR.Sprintf("R$ %.2f", v.Round(2).InexactFloat64())
}

// as fontes padrão do fpdf usam cp1252
func cp1252(s string) string {
	out, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(s)
	if err != nil {
		return s
	}
	return out
}

// DadosRecibo reúne o que vai impresso no recibo.
type DadosRecibo struct {
	Transacao    *Transacao
	EmpresaNome  string
	EmpresaCNPJ  string
	URLValidacao string
	Local        *time.Location
}

// GerarRecibo monta o PDF de uma transação paga.
func GerarRecibo(d DadosRecibo) ([]byte, error) {
	t := d.Transacao
	if t.Status != models.TransacaoPago || t.DataPagamento == nil {
		return nil, fmt.Errorf("transação %d não está paga", t.ID)
	}
	loc := d.Local
	if loc == nil {
		loc = time.UTC
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(cp1252("Recibo "+t.CodigoValidacao), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, cp1252(d.EmpresaNome), "", 1, "C", false, 0, "")
	if d.EmpresaCNPJ != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, "CNPJ "+d.EmpresaCNPJ, "", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, cp1252("RECIBO  "+FormatarMoeda(t.Valor)), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	verbo := "Recebemos"
	if t.Tipo == models.TipoDespesa {
		verbo = "Pagamos"
	}
	texto := fmt.Sprintf("%s a importância de %s referente a %s", verbo, FormatarMoeda(t.Valor), t.Descricao)
	if t.TotalParcelas > 0 {
		texto += fmt.Sprintf(" (parcela %d/%d)", t.ParcelaNumero, t.TotalParcelas)
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 7, cp1252(texto+"."), "", "L", false)
	pdf.Ln(4)

	linha := func(rotulo, valor string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 7, cp1252(rotulo), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, cp1252(valor), "", 1, "L", false, 0, "")
	}
	linha("Vencimento:", t.DataVencimento.In(loc).Format("02/01/2006"))
	linha("Pagamento:", t.DataPagamento.In(loc).Format("02/01/2006"))
	if t.FormaPagamento != "" {
		linha("Forma de pagamento:", t.FormaPagamento)
	}
	pdf.Ln(16)

	pdf.CellFormat(0, 6, "______________________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, cp1252(d.EmpresaNome), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, cp1252("Código de validação: "+t.CodigoValidacao), "", 1, "L", false, 0, "")
	if d.URLValidacao != "" {
		pdf.CellFormat(0, 5, cp1252("Verifique em: "+d.URLValidacao), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("gerar pdf: %w", err)
	}
	return buf.Bytes(), nil
}
