package mapping

import "fjacquet/mpr-recon/internal/models"

// synonyms is the rule table behind Resolve. For each canonical field the
// candidates are tried in order; the first column whose lower-cased name
// contains a candidate, or is contained by it, wins.
var synonyms = map[models.Field][]string{
	models.FieldTransactionID:     {"transaction_id", "txn_id", "trans_id", "id", "transaction_number"},
	models.FieldAmount:            {"amount", "amt", "value", "total", "sum"},
	models.FieldUTR:               {"utr", "unique_transaction_reference", "bank_reference", "rrn", "bank_ref"},
	models.FieldTimestamp:         {"timestamp", "transaction_time", "txn_time", "datetime", "date", "time", "created_at"},
	models.FieldReferenceID:       {"reference_id", "ref_id", "reference", "ref_no", "order_id"},
	models.FieldDescription:       {"description", "narration", "desc", "particulars", "remarks"},
	models.FieldType:              {"type", "txn_type", "transaction_type", "cr_dr", "dr_cr"},
	models.FieldSettlementAccount: {"settlement_account", "account_number", "account", "acc_no"},
}

// Synonyms returns a copy of the candidate substrings for f.
func Synonyms(f models.Field) []string {
	candidates := synonyms[f]
	out := make([]string, len(candidates))
	copy(out, candidates)
	return out
}
