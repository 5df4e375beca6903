// Package aggregate turns an engine outcome into the ReconciliationResult
// snapshot: counts, match rate, breakdowns and the bank settlement summary.
package aggregate

import (
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/reconciler"

	"github.com/shopspring/decimal"
)

// Input bundles an engine outcome with the canonical records it was computed
// from. Bank is nil when no bank statement was supplied.
type Input struct {
	Outcome  *reconciler.Outcome
	MPR      []models.CanonicalRecord
	Internal []models.CanonicalRecord
	Bank     []models.CanonicalRecord
}

// Aggregator builds ReconciliationResult values.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{
		logger: logging.Component(logger, "aggregator"),
	}
}

// Aggregate computes the summary. The returned result owns copies of the
// outcome's slices.
func (a *Aggregator) Aggregate(in Input) *models.ReconciliationResult {
	out := in.Outcome
	if out == nil {
		out = &reconciler.Outcome{}
	}

	result := &models.ReconciliationResult{
		TotalTransactions: len(out.Transactions),
		MatchedCount:      out.MatchedCount,
		UnmatchedCount:    out.UnmatchedCount,
		AnomalyCount:      len(out.Anomalies),
		MatchRate:         MatchRate(out.MatchedCount, len(in.MPR)),
		StatusBreakdown:   make(map[models.Status]int),
		AnomalyBreakdown:  make(map[models.AnomalyType]int),
		Anomalies:         make([]models.Anomaly, len(out.Anomalies)),
		Transactions:      make([]models.Transaction, len(out.Transactions)),
	}
	copy(result.Anomalies, out.Anomalies)
	copy(result.Transactions, out.Transactions)

	for _, tx := range result.Transactions {
		result.StatusBreakdown[tx.Status]++
	}
	for _, an := range result.Anomalies {
		result.AnomalyBreakdown[an.Type]++
	}

	if out.BankSupplied || in.Bank != nil {
		result.BankReconciliation = BankSummary(in.MPR, in.Internal, in.Bank, out.Settlement)
	}

	if a.logger != nil {
		a.logger.Info("Reconciliation summary",
			logging.F("total_transactions", result.TotalTransactions),
			logging.F("matched", result.MatchedCount),
			logging.F("anomalies", result.AnomalyCount),
			logging.F(logging.FieldMatchRate, result.MatchRate))
	}

	return result
}

// MatchRate returns matched / mprCount * 100, or 0 when mprCount is 0.
func MatchRate(matched, mprCount int) float64 {
	if mprCount <= 0 {
		return 0
	}
	return float64(matched) / float64(mprCount) * 100
}

// BankSummary computes the settlement totals for a bank statement.
func BankSummary(mpr, internal, bank []models.CanonicalRecord, counters models.SettlementCounters) *models.BankReconciliationSummary {
	credits := SumCredits(bank)
	debits := SumDebits(bank)
	mprTotal := models.SumAmounts(mpr)

	return &models.BankReconciliationSummary{
		TotalBankCredits:      credits,
		TotalBankDebits:       debits,
		TotalMPRAmount:        mprTotal,
		TotalInternalAmount:   models.SumAmounts(internal),
		SuccessfulSettlements: counters.Successful,
		RefundedTransactions:  counters.Refunded,
		CreditAdjustments:     counters.CreditAdjustments,
		PendingSettlements:    counters.Pending,
		SettlementVariance:    credits.Sub(mprTotal),
		NetSettlement:         credits.Sub(debits),
	}
}

// SumCredits totals the positive amounts of records.
func SumCredits(records []models.CanonicalRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Amount.IsPositive() {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

// SumDebits totals the absolute values of the negative amounts of records.
func SumDebits(records []models.CanonicalRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Amount.IsNegative() {
			total = total.Add(rec.Amount.Abs())
		}
	}
	return total
}
