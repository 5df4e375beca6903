package models

import (
	"github.com/shopspring/decimal"
)

// Status is the reconciliation outcome of a transaction.
type Status string

const (
	StatusMatched        Status = "matched"
	StatusUnmatched      Status = "unmatched"
	StatusAnomaly        Status = "anomaly"
	StatusRefunded       Status = "refunded"
	StatusCreditAdjusted Status = "credit_adjusted"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusMatched, StatusUnmatched, StatusAnomaly, StatusRefunded, StatusCreditAdjusted}

// ParseStatus converts a status name, returning false when unknown.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// SettlementStatus describes how the bank statement settled a transaction.
type SettlementStatus string

const (
	SettlementSettled  SettlementStatus = "settled"
	SettlementPending  SettlementStatus = "pending"
	SettlementFailed   SettlementStatus = "failed"
	SettlementRefunded SettlementStatus = "refunded"
	SettlementAdjusted SettlementStatus = "adjusted"
)

// MatchTag names a counterpart a transaction was joined with.
type MatchTag string

const (
	MatchInternal   MatchTag = "internal"
	MatchBank       MatchTag = "bank"
	MatchBankRefund MatchTag = "bank_refund"
)

// AnomalyType classifies an anomaly.
type AnomalyType string

const (
	AnomalyAmountMismatch     AnomalyType = "amount_mismatch"
	AnomalyMissingInternal    AnomalyType = "missing_internal"
	AnomalyMissingMPR         AnomalyType = "missing_mpr"
	AnomalyDuplicate          AnomalyType = "duplicate"
	AnomalySettlementMismatch AnomalyType = "settlement_mismatch"
)

// AnomalyTypes lists every anomaly type in display order.
var AnomalyTypes = []AnomalyType{
	AnomalyAmountMismatch,
	AnomalyMissingInternal,
	AnomalyMissingMPR,
	AnomalyDuplicate,
	AnomalySettlementMismatch,
}

// Transaction is the engine's output unit: one classified record.
type Transaction struct {
	ID               string           `json:"id" yaml:"id"`
	TransactionID    string           `json:"transactionId" yaml:"transaction_id"`
	Amount           decimal.Decimal  `json:"amount" yaml:"amount"`
	UTR              string           `json:"utr,omitempty" yaml:"utr,omitempty"`
	Timestamp        string           `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Status           Status           `json:"status" yaml:"status"`
	Source           Role             `json:"source" yaml:"source"`
	MatchedWith      []MatchTag       `json:"matchedWith" yaml:"matched_with"`
	AnomalyReason    string           `json:"anomalyReason,omitempty" yaml:"anomaly_reason,omitempty"`
	BankAmount       *decimal.Decimal `json:"bankAmount,omitempty" yaml:"bank_amount,omitempty"`
	SettlementStatus SettlementStatus `json:"settlementStatus,omitempty" yaml:"settlement_status,omitempty"`
	Note             string           `json:"note,omitempty" yaml:"note,omitempty"`
}

// AddMatch records a counterpart tag once, keeping insertion order.
func (t *Transaction) AddMatch(tag MatchTag) {
	for _, existing := range t.MatchedWith {
		if existing == tag {
			return
		}
	}
	t.MatchedWith = append(t.MatchedWith, tag)
}

// MatchedWithTag reports whether the transaction was joined with tag.
func (t Transaction) MatchedWithTag(tag MatchTag) bool {
	for _, existing := range t.MatchedWith {
		if existing == tag {
			return true
		}
	}
	return false
}

// Anomaly is a discrepancy found while reconciling.
type Anomaly struct {
	ID             string           `json:"id" yaml:"id"`
	Type           AnomalyType      `json:"type" yaml:"type"`
	Description    string           `json:"description" yaml:"description"`
	TransactionID  string           `json:"transactionId" yaml:"transaction_id"`
	MPRAmount      *decimal.Decimal `json:"mprAmount,omitempty" yaml:"mpr_amount,omitempty"`
	InternalAmount *decimal.Decimal `json:"internalAmount,omitempty" yaml:"internal_amount,omitempty"`
	BankAmount     *decimal.Decimal `json:"bankAmount,omitempty" yaml:"bank_amount,omitempty"`
}

// AmountRef returns a pointer to a copy of d, for optional amount fields.
func AmountRef(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// SettlementCounters are the bank settlement tallies produced by the engine.
type SettlementCounters struct {
	Successful        int `json:"successful" yaml:"successful"`
	Refunded          int `json:"refunded" yaml:"refunded"`
	CreditAdjustments int `json:"creditAdjustments" yaml:"credit_adjustments"`
	Pending           int `json:"pending" yaml:"pending"`
}
