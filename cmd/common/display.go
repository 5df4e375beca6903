package common

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// PrintSummary writes the headline counts, breakdowns and bank summary.
func PrintSummary(w io.Writer, result *models.ReconciliationResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "Total transactions: %d\n", result.TotalTransactions)
	fmt.Fprintf(&b, "Matched:            %s\n", SuccessStyle.Render(fmt.Sprint(result.MatchedCount)))
	fmt.Fprintf(&b, "Unmatched:          %d\n", result.UnmatchedCount)
	fmt.Fprintf(&b, "Anomalies:          %s\n", countStyle(result.AnomalyCount).Render(fmt.Sprint(result.AnomalyCount)))
	fmt.Fprintf(&b, "Match rate:         %.2f%%", result.MatchRate)
	fmt.Fprintln(w, RenderBox("Reconciliation Summary", b.String()))

	if len(result.StatusBreakdown) > 0 {
		fmt.Fprintln(w, HeaderStyle.Render("By status"))
		for _, s := range models.Statuses {
			if n := result.StatusBreakdown[s]; n > 0 {
				fmt.Fprintf(w, "  %-16s %d\n", s, n)
			}
		}
	}
	if len(result.AnomalyBreakdown) > 0 {
		fmt.Fprintln(w, HeaderStyle.Render("By anomaly type"))
		for _, a := range models.AnomalyTypes {
			if n := result.AnomalyBreakdown[a]; n > 0 {
				fmt.Fprintf(w, "  %-20s %d\n", a, n)
			}
		}
	}

	if bank := result.BankReconciliation; bank != nil {
		b.Reset()
		fmt.Fprintf(&b, "Bank credits:       %s\n", money(bank.TotalBankCredits))
		fmt.Fprintf(&b, "Bank debits:        %s\n", money(bank.TotalBankDebits))
		fmt.Fprintf(&b, "MPR total:          %s\n", money(bank.TotalMPRAmount))
		fmt.Fprintf(&b, "Internal total:     %s\n", money(bank.TotalInternalAmount))
		fmt.Fprintf(&b, "Settled:            %d\n", bank.SuccessfulSettlements)
		fmt.Fprintf(&b, "Refunded:           %d\n", bank.RefundedTransactions)
		fmt.Fprintf(&b, "Credit adjustments: %d\n", bank.CreditAdjustments)
		fmt.Fprintf(&b, "Pending:            %d\n", bank.PendingSettlements)
		fmt.Fprintf(&b, "Variance:           %s\n", money(bank.SettlementVariance))
		fmt.Fprintf(&b, "Net settlement:     %s", money(bank.NetSettlement))
		fmt.Fprintln(w, RenderBox("Bank Settlement", b.String()))
	}
}

// PrintTransactions writes one table row per transaction.
func PrintTransactions(w io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No transactions to display."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TRANSACTION\tSOURCE\tSTATUS\tAMOUNT\tBANK\tSETTLEMENT\tMATCHED\tDETAIL")
	for _, tx := range txs {
		bankAmount := "-"
		if tx.BankAmount != nil {
			bankAmount = money(*tx.BankAmount)
		}
		tags := make([]string, len(tx.MatchedWith))
		for i, t := range tx.MatchedWith {
			tags[i] = string(t)
		}
		detail := tx.AnomalyReason
		if detail == "" {
			detail = tx.Note
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.TransactionID,
			tx.Source,
			tx.Status,
			money(tx.Amount),
			bankAmount,
			orDash(string(tx.SettlementStatus)),
			orDash(strings.Join(tags, ",")),
			detail)
	}
}

// PrintAnomalies writes one line per anomaly.
func PrintAnomalies(w io.Writer, anomalies []models.Anomaly) {
	if len(anomalies) == 0 {
		fmt.Fprintln(w, FormatSuccess("No anomalies found."))
		return
	}
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("Anomalies (%d)", len(anomalies))))
	for _, a := range anomalies {
		fmt.Fprintf(w, "  %s %-20s %s\n", ErrorStyle.Render(ErrorIcon), a.Type, a.Description)
	}
}

// PrintDataset describes a prepared dataset: its columns, the resolved
// mapping with required markers, completeness and preview rows.
func PrintDataset(w io.Writer, ds *pipeline.Dataset) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s dataset: %s (%d rows)", ds.Role.Label(), ds.Name, ds.Rows)))
	fmt.Fprintf(w, "Columns: %s\n\n", strings.Join(ds.Columns, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tREQUIRED\tCOLUMN")
	for _, spec := range mapping.SchemaFor(ds.Role).Fields {
		required := ""
		if spec.Required {
			required = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", spec.Field, required, orDash(ds.Mapping.Column(spec.Field)))
	}
	tw.Flush()
	fmt.Fprintln(w)

	if ds.Complete {
		fmt.Fprintln(w, FormatSuccess("Mapping complete"))
	} else {
		fmt.Fprintln(w, FormatWarning("Mapping incomplete, missing: "+strings.Join(models.FieldNames(ds.Missing), ", ")))
	}

	if len(ds.Preview) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, HeaderStyle.Render("Preview"))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(ds.Columns, "\t"))
		for _, row := range ds.Preview {
			cells := make([]string, len(ds.Columns))
			for i, c := range ds.Columns {
				cells[i] = row[c]
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		tw.Flush()
	}

	for _, issue := range ds.Issues {
		fmt.Fprintln(w, FormatWarning(issue.String()))
	}
}

// PrintIncomplete lists every dataset whose mapping is missing required fields.
func PrintIncomplete(w io.Writer, prep *pipeline.Preparation) {
	for _, role := range models.Roles {
		ds := prep.Dataset(role)
		if ds == nil || ds.Complete {
			continue
		}
		fmt.Fprintln(w, FormatError(fmt.Sprintf("%s (%s): unmapped required fields: %s",
			role.Label(), ds.Name, strings.Join(models.FieldNames(ds.Missing), ", "))))
		fmt.Fprintf(w, "  available columns: %s\n", strings.Join(ds.Columns, ", "))
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func countStyle(n int) lipgloss.Style {
	if n > 0 {
		return ErrorStyle
	}
	return SuccessStyle
}
