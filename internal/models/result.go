package models

import (
	"github.com/shopspring/decimal"
)

// BankReconciliationSummary is present only when a bank dataset was supplied.
type BankReconciliationSummary struct {
	TotalBankCredits      decimal.Decimal `json:"totalBankCredits" yaml:"total_bank_credits"`
	TotalBankDebits       decimal.Decimal `json:"totalBankDebits" yaml:"total_bank_debits"`
	TotalMPRAmount        decimal.Decimal `json:"totalMPRAmount" yaml:"total_mpr_amount"`
	TotalInternalAmount   decimal.Decimal `json:"totalInternalAmount" yaml:"total_internal_amount"`
	SuccessfulSettlements int             `json:"successfulSettlements" yaml:"successful_settlements"`
	RefundedTransactions  int             `json:"refundedTransactions" yaml:"refunded_transactions"`
	CreditAdjustments     int             `json:"creditAdjustments" yaml:"credit_adjustments"`
	PendingSettlements    int             `json:"pendingSettlements" yaml:"pending_settlements"`
	SettlementVariance    decimal.Decimal `json:"settlementVariance" yaml:"settlement_variance"`
	NetSettlement         decimal.Decimal `json:"netSettlement" yaml:"net_settlement"`
}

// ReconciliationResult is the immutable snapshot produced by one run.
type ReconciliationResult struct {
	TotalTransactions  int                        `json:"totalTransactions" yaml:"total_transactions"`
	MatchedCount       int                        `json:"matchedCount" yaml:"matched_count"`
	UnmatchedCount     int                        `json:"unmatchedCount" yaml:"unmatched_count"`
	AnomalyCount       int                        `json:"anomalyCount" yaml:"anomaly_count"`
	MatchRate          float64                    `json:"matchRate" yaml:"match_rate"`
	BankReconciliation *BankReconciliationSummary `json:"bankReconciliation,omitempty" yaml:"bank_reconciliation,omitempty"`
	StatusBreakdown    map[Status]int             `json:"statusBreakdown" yaml:"status_breakdown"`
	AnomalyBreakdown   map[AnomalyType]int        `json:"anomalyBreakdown" yaml:"anomaly_breakdown"`
	Anomalies          []Anomaly                  `json:"anomalies" yaml:"anomalies"`
	Transactions       []Transaction              `json:"transactions" yaml:"transactions"`
}

// ResultFilter selects transactions for detailed display.
// Zero values mean "any"; Limit <= 0 means unlimited.
type ResultFilter struct {
	Status Status
	Source Role
	Limit  int
}

// Filter returns the transactions matching f, in result order.
func (r *ReconciliationResult) Filter(f ResultFilter) []Transaction {
	var out []Transaction
	for _, tx := range r.Transactions {
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if f.Source != "" && tx.Source != f.Source {
			continue
		}
		out = append(out, tx)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// AnomaliesFor returns the anomalies recorded against a business transaction id.
func (r *ReconciliationResult) AnomaliesFor(transactionID string) []Anomaly {
	var out []Anomaly
	for _, a := range r.Anomalies {
		if a.TransactionID == transactionID {
			out = append(out, a)
		}
	}
	return out
}
