// Package report encodes reconciliation results as JSON, YAML or CSV.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/mpr-recon/internal/fileutils"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// TransactionRow is the CSV shape of a transaction.
type TransactionRow struct {
	ID               string `csv:"ID"`
	TransactionID    string `csv:"TransactionID"`
	Source           string `csv:"Source"`
	Status           string `csv:"Status"`
	Amount           string `csv:"Amount"`
	UTR              string `csv:"UTR"`
	Timestamp        string `csv:"Timestamp"`
	MatchedWith      string `csv:"MatchedWith"`
	SettlementStatus string `csv:"SettlementStatus"`
	BankAmount       string `csv:"BankAmount"`
	AnomalyReason    string `csv:"AnomalyReason"`
	Note             string `csv:"Note"`
}

// AnomalyRow is the CSV shape of an anomaly.
type AnomalyRow struct {
	ID             string `csv:"ID"`
	Type           string `csv:"Type"`
	TransactionID  string `csv:"TransactionID"`
	Description    string `csv:"Description"`
	MPRAmount      string `csv:"MPRAmount"`
	InternalAmount string `csv:"InternalAmount"`
	BankAmount     string `csv:"BankAmount"`
}

// Generator encodes results for output files.
type Generator struct {
	logger    logging.Logger
	delimiter rune
}

// NewGenerator creates a Generator writing CSV with delimiter.
func NewGenerator(logger logging.Logger, delimiter rune) *Generator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Generator{
		logger:    logging.Component(logger, "report"),
		delimiter: delimiter,
	}
}

// Generate encodes result in format. CSV output holds the transaction list;
// use AnomaliesCSV for the anomaly list.
func (g *Generator) Generate(result *models.ReconciliationResult, format string) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot generate report from nil result")
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return g.generateJSON(result)
	case FormatYAML:
		return g.generateYAML(result)
	case FormatCSV:
		return g.TransactionsCSV(result.Transactions)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(result *models.ReconciliationResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *Generator) generateYAML(result *models.ReconciliationResult) ([]byte, error) {
	data, err := yaml.Marshal(result)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return data, nil
}

// TransactionsCSV encodes transactions as delimited text with a header row.
func (g *Generator) TransactionsCSV(txs []models.Transaction) ([]byte, error) {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		tags := make([]string, len(tx.MatchedWith))
		for i, tag := range tx.MatchedWith {
			tags[i] = string(tag)
		}
		rows = append(rows, TransactionRow{
			ID:               tx.ID,
			TransactionID:    tx.TransactionID,
			Source:           string(tx.Source),
			Status:           string(tx.Status),
			Amount:           tx.Amount.String(),
			UTR:              tx.UTR,
			Timestamp:        tx.Timestamp,
			MatchedWith:      strings.Join(tags, "|"),
			SettlementStatus: string(tx.SettlementStatus),
			BankAmount:       optionalAmount(tx.BankAmount),
			AnomalyReason:    tx.AnomalyReason,
			Note:             tx.Note,
		})
	}
	return g.marshalCSV(rows, len(rows))
}

// AnomaliesCSV encodes anomalies as delimited text with a header row.
func (g *Generator) AnomaliesCSV(anomalies []models.Anomaly) ([]byte, error) {
	rows := make([]AnomalyRow, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, AnomalyRow{
			ID:             a.ID,
			Type:           string(a.Type),
			TransactionID:  a.TransactionID,
			Description:    a.Description,
			MPRAmount:      optionalAmount(a.MPRAmount),
			InternalAmount: optionalAmount(a.InternalAmount),
			BankAmount:     optionalAmount(a.BankAmount),
		})
	}
	return g.marshalCSV(rows, len(rows))
}

func (g *Generator) marshalCSV(rows interface{}, count int) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	csvWriter.Comma = g.delimiter

	safe := gocsv.NewSafeCSVWriter(csvWriter)
	if err := gocsv.MarshalCSV(rows, safe); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("error writing CSV data: %w", err)
	}
	safe.Flush()
	if err := safe.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV data: %w", err)
	}

	g.logger.Debug("Encoded CSV report", logging.F(logging.FieldCount, count))
	return buf.Bytes(), nil
}

// WriteFile writes an encoded report to path, creating parent directories.
func (g *Generator) WriteFile(path string, data []byte) error {
	if err := fileutils.WriteFile(path, data, 0600); err != nil {
		g.logger.WithError(err).Error("Failed to write report", logging.F(logging.FieldOutputFile, path))
		return err
	}
	g.logger.Info("Report written",
		logging.F(logging.FieldOutputFile, path),
		logging.F("bytes", len(data)))
	return nil
}

func optionalAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
