package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/reconerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestLoader(t *testing.T, enc string) *Loader {
	t.Helper()
	l, err := NewLoader(enc, logging.NewMockLogger())
	require.NoError(t, err)
	return l
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestNewLoader_RejectsUnknownEncoding(t *testing.T) {
	_, err := NewLoader("ebcdic", logging.NewMockLogger())
	assert.Error(t, err)

	l := newTestLoader(t, "")
	assert.Equal(t, "utf-8", l.Encoding())
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpr.csv")
	require.NoError(t, os.WriteFile(path, []byte("transaction_id,amount\nTXN001,100\n"), 0600))

	in, err := newTestLoader(t, "utf-8").Load(models.RoleMPR, path)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMPR, in.Role)
	assert.Equal(t, "mpr.csv", in.Name)
	assert.Equal(t, "transaction_id,amount\nTXN001,100\n", in.Text)
	assert.Nil(t, in.Table)
}

func TestLoad_Windows1252(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	// 0xE9 is "é" in windows-1252 and an invalid byte in UTF-8.
	require.NoError(t, os.WriteFile(path, []byte("utr,amount,description\nU1,10,caf\xe9\n"), 0600))

	in, err := newTestLoader(t, "cp1252").Load(models.RoleBank, path)
	require.NoError(t, err)
	assert.Contains(t, in.Text, "café")
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "internal.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"", ""},
		{"Txn ID", "Amount"},
		{"TXN001", "1000.00"},
		{"TXN002", "2450.50"},
	})

	in, err := newTestLoader(t, "").Load(models.RoleInternal, path)
	require.NoError(t, err)
	require.NotNil(t, in.Table)
	assert.Equal(t, []string{"Txn ID", "Amount"}, in.Table.Columns)
	require.Len(t, in.Table.Rows, 2)
	assert.Equal(t, "2450.50", in.Table.Rows[1]["Amount"])
	assert.Empty(t, in.Text)
}

func TestLoad_XLSXFormattedCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"UTR", "Amount", "Date"}))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "UTR001"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 2500))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", thousands))
	isoDate := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &isoDate})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", dateStyle))

	shown, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	require.Equal(t, "2,500", shown)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	in, err := newTestLoader(t, "").Load(models.RoleBank, path)
	require.NoError(t, err)
	require.NotNil(t, in.Table)
	require.Len(t, in.Table.Rows, 1)
	assert.Equal(t, "2500", in.Table.Rows[0]["Amount"])
	assert.Equal(t, "2025-01-15", in.Table.Rows[0]["Date"])
}

func TestLoad_EmptyWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	writeWorkbook(t, path, nil)

	_, err := newTestLoader(t, "").Load(models.RoleBank, path)
	var parseErr *reconerror.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.ErrorIs(t, err, reconerror.ErrEmptyInput)
}

func TestLoad_CorruptWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0600))

	_, err := newTestLoader(t, "").Load(models.RoleBank, path)
	var formatErr *reconerror.InvalidFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "XLSX workbook", formatErr.ExpectedFormat)
}

func TestLoad_RejectedFile(t *testing.T) {
	dir := t.TempDir()
	loader := newTestLoader(t, "")

	_, err := loader.Load(models.RoleMPR, filepath.Join(dir, "missing.csv"))
	var formatErr *reconerror.InvalidFormatError
	require.True(t, errors.As(err, &formatErr))

	pdf := filepath.Join(dir, "statement.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0600))
	_, err = loader.Load(models.RoleBank, pdf)
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, err.Error(), "unsupported input file type")
}
