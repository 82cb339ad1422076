package infra

// pdf.go renders the register closing slip with go-pdf/fpdf: an A6 page with
// the session ledger, every withdrawal and the counted-cash discrepancy.
// The file is written to storagePath/fechamento_{sessao}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"barpos/internal/dto"
	"barpos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GerarComprovanteFechamento writes the closing slip for rep and returns the
// file path. rep must describe a closed session.
func GerarComprovanteFechamento(rep *dto.ReporteCaixaResponse, storagePath string) (string, error) {
	if rep.Status != model.CaixaFechada {
		return "", fmt.Errorf("pdf: sessao %s ainda aberta", rep.SessaoCaixaID)
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: criar diretorio: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("fechamento_%s.pdf", rep.SessaoCaixaID))

	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(6, 6, 6)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 12
	labelW := contentW * 0.6
	valorW := contentW - labelW

	linha := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.CellFormat(labelW, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valorW, 5, "R$ "+v.StringFixed(2), "", 1, "R", false, 0, "")
	}
	separador := func() {
		pdf.Ln(1)
		pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
		pdf.Ln(2)
	}

	// ── Cabeçalho ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr("Fechamento de Caixa"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Sessão "+rep.SessaoCaixaID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Abertura: "+rep.AbertaEm), "", 1, "L", false, 0, "")
	if rep.FechadaEm != nil {
		pdf.CellFormat(contentW, 4, tr("Fechamento: "+*rep.FechadaEm), "", 1, "L", false, 0, "")
	}
	separador()

	// ── Livro ────────────────────────────────────────────────────────────────
	linha("Saldo inicial", rep.SaldoInicial, false)
	linha("Vendas", rep.TotalVendas, false)
	linha("Sangrias", rep.TotalSangrias.Neg(), false)
	linha("Saldo esperado", rep.SaldoEsperado, true)
	if rep.SaldoContado != nil {
		linha("Saldo contado", *rep.SaldoContado, true)
	}
	if rep.Diferenca != nil {
		linha("Diferença", rep.Diferenca.Valor, false)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4,
			tr(fmt.Sprintf("%s%% (%s)", rep.Diferenca.Percentual.StringFixed(2), rep.Diferenca.Classificacao)),
			"", 1, "R", false, 0, "")
	}
	separador()
	linha("Comissões acumuladas", rep.TotalComissoes, false)
	linha("Lucro líquido", rep.LucroLiquido, true)

	// ── Sangrias ─────────────────────────────────────────────────────────────
	if len(rep.Sangrias) > 0 {
		separador()
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Sangrias", "", 1, "L", false, 0, "")
		for _, s := range rep.Sangrias {
			motivo := s.Motivo
			if r := []rune(motivo); len(r) > 28 {
				motivo = string(r[:27]) + "..."
			}
			linha(motivo, s.Valor, false)
		}
	}

	if rep.Observacoes != nil && *rep.Observacoes != "" {
		separador()
		pdf.SetFont("Helvetica", "", 7)
		pdf.MultiCell(contentW, 4, tr("Obs.: "+*rep.Observacoes), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: gravar arquivo: %w", err)
	}
	return filePath, nil
}
