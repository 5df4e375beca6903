// Package reconciler joins normalized MPR, internal ledger and bank records
// and classifies every MPR record into a transaction outcome.
//
// MPR records are joined to internal records on transaction_id and to bank
// records on utr. Internal records without an MPR counterpart and bank rows
// without a UTR produce synthetic transactions of their own.
package reconciler

import (
	"fmt"

	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/reconerror"
)

// Outcome is the raw result of one reconciliation pass, before aggregation.
type Outcome struct {
	Transactions   []models.Transaction
	Anomalies      []models.Anomaly
	MatchedCount   int
	UnmatchedCount int
	Settlement     models.SettlementCounters
	// BankSupplied is true when a bank dataset (possibly empty) was given.
	BankSupplied bool
}

// Engine reconciles canonical records. It holds no state between runs.
type Engine struct {
	opts   Options
	logger logging.Logger
}

// NewEngine creates an Engine. A zero tolerance in opts is replaced by
// DefaultTolerance.
func NewEngine(opts Options, logger logging.Logger) *Engine {
	if opts.Tolerance.IsZero() {
		opts.Tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{opts: opts, logger: logging.Component(logger, "engine")}
}

// Options returns the options the engine runs with.
func (e *Engine) Options() Options {
	return e.opts
}

// run carries the mutable state of a single Reconcile call.
type run struct {
	opts    Options
	out     *Outcome
	mprKeys map[string]bool
}

func (r *run) addAnomaly(a models.Anomaly) {
	a.ID = anomalyUUID(string(a.Type), len(r.out.Anomalies), a.TransactionID)
	r.out.Anomalies = append(r.out.Anomalies, a)
}

// Reconcile classifies mpr against internal and, when bank is non-nil,
// against the bank statement. A nil mpr or internal slice is an error; an
// empty one is not.
func (e *Engine) Reconcile(mpr, internal, bank []models.CanonicalRecord) (*Outcome, error) {
	if mpr == nil {
		return nil, &reconerror.ReconciliationError{Role: string(models.RoleMPR), Reason: "is missing"}
	}
	if internal == nil {
		return nil, &reconerror.ReconciliationError{Role: string(models.RoleInternal), Reason: "is missing"}
	}

	r := &run{
		opts: e.opts,
		out: &Outcome{
			Transactions: make([]models.Transaction, 0, len(mpr)+len(internal)),
			Anomalies:    []models.Anomaly{},
			BankSupplied: bank != nil,
		},
		mprKeys: make(map[string]bool, len(mpr)),
	}
	for _, m := range mpr {
		if id := m.TransactionID(); id != "" {
			r.mprKeys[id] = true
		}
	}

	internalIdx := newKeyIndex(internal, models.CanonicalRecord.TransactionID, nil, e.opts.OneToOne)
	var creditIdx, refundIdx *keyIndex
	if r.out.BankSupplied {
		creditIdx = newKeyIndex(bank, models.CanonicalRecord.UTR, isCredit, e.opts.OneToOne)
		refundIdx = newKeyIndex(bank, models.CanonicalRecord.UTR, isDebit, e.opts.OneToOne)
	}

	for i, m := range mpr {
		tx := r.classifyMPR(i, m, internal, internalIdx)
		if r.out.BankSupplied {
			r.settle(&tx, m, bank, creditIdx, refundIdx)
		}
		if tx.Status == models.StatusUnmatched && len(tx.MatchedWith) == 0 {
			r.out.UnmatchedCount++
		}
		r.out.Transactions = append(r.out.Transactions, tx)
	}

	for i, rec := range internal {
		r.checkInternal(i, rec, internalIdx)
	}

	if r.out.BankSupplied {
		for i, rec := range bank {
			r.adjustBank(i, rec)
		}
	}

	e.logger.Info("Reconciliation pass completed",
		logging.F(logging.FieldCount, len(r.out.Transactions)),
		logging.F("matched", r.out.MatchedCount),
		logging.F("anomalies", len(r.out.Anomalies)),
		logging.F("bank_supplied", r.out.BankSupplied))

	for _, a := range r.out.Anomalies {
		e.logger.Debug("Anomaly detected",
			logging.F(logging.FieldAnomalyType, a.Type),
			logging.F(logging.FieldTransactionID, a.TransactionID),
			logging.F(logging.FieldReason, a.Description))
	}

	return r.out, nil
}

func isCredit(rec models.CanonicalRecord) bool { return rec.Amount.IsPositive() }

func isDebit(rec models.CanonicalRecord) bool { return rec.Amount.IsNegative() }

// classifyMPR performs the internal ledger join for one MPR record.
func (r *run) classifyMPR(i int, m models.CanonicalRecord, internal []models.CanonicalRecord, idx *keyIndex) models.Transaction {
	id := m.TransactionID()
	tx := models.Transaction{
		ID:            transactionUUID(string(models.RoleMPR), i, id),
		TransactionID: id,
		Amount:        m.Amount,
		UTR:           m.UTR(),
		Timestamp:     m.Timestamp(),
		Status:        models.StatusUnmatched,
		Source:        models.RoleMPR,
		MatchedWith:   []models.MatchTag{},
	}

	pos, found := idx.take(id)
	switch {
	case found:
		match := internal[pos]
		tx.AddMatch(models.MatchInternal)
		if r.opts.withinTolerance(m.Amount, match.Amount) {
			tx.Status = models.StatusMatched
			r.out.MatchedCount++
			break
		}
		tx.Status = models.StatusAnomaly
		tx.AnomalyReason = fmt.Sprintf("MPR/Internal amount mismatch: MPR %s vs Internal %s",
			m.Amount.StringFixed(2), match.Amount.StringFixed(2))
		r.addAnomaly(models.Anomaly{
			Type:           models.AnomalyAmountMismatch,
			Description:    fmt.Sprintf("Amount mismatch: MPR %s vs Internal %s", m.Amount.StringFixed(2), match.Amount.StringFixed(2)),
			TransactionID:  id,
			MPRAmount:      models.AmountRef(m.Amount),
			InternalAmount: models.AmountRef(match.Amount),
		})

	case r.opts.OneToOne && idx.has(id):
		tx.Status = models.StatusAnomaly
		tx.AnomalyReason = "Internal record already matched by an earlier MPR record"
		r.addAnomaly(models.Anomaly{
			Type:          models.AnomalyDuplicate,
			Description:   fmt.Sprintf("MPR transaction %s duplicates an already matched record", id),
			TransactionID: id,
			MPRAmount:     models.AmountRef(m.Amount),
		})

	default:
		tx.Status = models.StatusAnomaly
		tx.AnomalyReason = "No matching internal record"
		r.addAnomaly(models.Anomaly{
			Type:          models.AnomalyMissingInternal,
			Description:   fmt.Sprintf("MPR transaction %s has no matching internal record", displayID(id)),
			TransactionID: id,
			MPRAmount:     models.AmountRef(m.Amount),
		})
	}

	return tx
}

// settle performs the bank statement join for one MPR transaction.
func (r *run) settle(tx *models.Transaction, m models.CanonicalRecord, bank []models.CanonicalRecord, credits, refunds *keyIndex) {
	utr := m.UTR()

	if pos, ok := credits.take(utr); ok {
		b := bank[pos]
		tx.AddMatch(models.MatchBank)
		tx.BankAmount = models.AmountRef(b.Amount)
		if r.opts.withinTolerance(b.Amount, m.Amount) {
			tx.SettlementStatus = models.SettlementSettled
			r.out.Settlement.Successful++
			return
		}
		tx.SettlementStatus = models.SettlementFailed
		r.addAnomaly(models.Anomaly{
			Type:          models.AnomalySettlementMismatch,
			Description:   fmt.Sprintf("Settlement mismatch: MPR %s vs Bank %s", m.Amount.StringFixed(2), b.Amount.StringFixed(2)),
			TransactionID: tx.TransactionID,
			MPRAmount:     models.AmountRef(m.Amount),
			BankAmount:    models.AmountRef(b.Amount),
		})
		return
	}

	if pos, ok := refunds.take(utr); ok {
		b := bank[pos]
		tx.AddMatch(models.MatchBankRefund)
		tx.BankAmount = models.AmountRef(b.Amount)
		tx.Status = models.StatusRefunded
		tx.SettlementStatus = models.SettlementRefunded
		r.out.Settlement.Refunded++
		return
	}

	tx.SettlementStatus = models.SettlementPending
	r.out.Settlement.Pending++
}

// checkInternal emits the synthetic transaction for an internal record that
// no MPR record accounts for.
func (r *run) checkInternal(i int, rec models.CanonicalRecord, idx *keyIndex) {
	id := rec.TransactionID()

	var (
		anomalyType models.AnomalyType
		reason      string
		description string
	)
	switch {
	case !r.mprKeys[id]:
		anomalyType = models.AnomalyMissingMPR
		reason = "No matching MPR record"
		description = fmt.Sprintf("Internal transaction %s has no matching MPR record", displayID(id))
	case r.opts.OneToOne && !idx.isConsumed(i):
		anomalyType = models.AnomalyDuplicate
		reason = "Duplicate internal record"
		description = fmt.Sprintf("Internal transaction %s is a duplicate with no MPR record left to match", id)
	default:
		return
	}

	r.addAnomaly(models.Anomaly{
		Type:           anomalyType,
		Description:    description,
		TransactionID:  id,
		InternalAmount: models.AmountRef(rec.Amount),
	})
	r.out.Transactions = append(r.out.Transactions, models.Transaction{
		ID:            transactionUUID(string(models.RoleInternal), i, id),
		TransactionID: id,
		Amount:        rec.Amount,
		UTR:           rec.UTR(),
		Timestamp:     rec.Timestamp(),
		Status:        models.StatusAnomaly,
		Source:        models.RoleInternal,
		MatchedWith:   []models.MatchTag{},
		AnomalyReason: reason,
	})
}

// adjustBank emits the synthetic transaction for a bank row without a UTR.
func (r *run) adjustBank(i int, rec models.CanonicalRecord) {
	if rec.UTR() != "" || rec.Amount.IsZero() {
		return
	}

	id := rec.ReferenceID()
	if id == "" {
		id = fmt.Sprintf("BANK-%d", rec.Row)
	}

	note := "Bank charge"
	if rec.Amount.IsPositive() {
		note = "Credit adjustment"
		r.out.Settlement.CreditAdjustments++
	}
	if desc := rec.Get(models.FieldDescription); desc != "" {
		note += ": " + desc
	}

	r.out.Transactions = append(r.out.Transactions, models.Transaction{
		ID:               transactionUUID(string(models.RoleBank), i, id),
		TransactionID:    id,
		Amount:           rec.Amount,
		Timestamp:        rec.Timestamp(),
		Status:           models.StatusCreditAdjusted,
		Source:           models.RoleBank,
		MatchedWith:      []models.MatchTag{},
		BankAmount:       models.AmountRef(rec.Amount),
		SettlementStatus: models.SettlementSettled,
		Note:             note,
	})
}

func displayID(id string) string {
	if id == "" {
		return "(blank)"
	}
	return id
}
