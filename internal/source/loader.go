// Package source reads dataset files from disk and hands them to the
// pipeline as role-tagged inputs.
package source

import (
	"fmt"
	"io"

	"fjacquet/mpr-recon/internal/dateutils"
	"fjacquet/mpr-recon/internal/fileutils"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/pipeline"
	"fjacquet/mpr-recon/internal/reconerror"
	"fjacquet/mpr-recon/internal/tabular"
	"fjacquet/mpr-recon/internal/validation"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Loader reads delimited text and spreadsheet files.
type Loader struct {
	encoding string
	logger   logging.Logger
}

// NewLoader creates a Loader that decodes text files from the named
// character encoding. An empty name means UTF-8.
func NewLoader(encodingName string, logger logging.Logger) (*Loader, error) {
	if err := validation.IsValidEncoding(encodingName); err != nil {
		return nil, err
	}
	return &Loader{
		encoding: validation.NormalizeEncoding(encodingName),
		logger:   logging.Component(logger, "loader"),
	}, nil
}

// Encoding returns the normalized encoding name.
func (l *Loader) Encoding() string {
	return l.encoding
}

// Load reads path as the dataset for role.
func (l *Loader) Load(role models.Role, path string) (pipeline.Input, error) {
	if err := validation.IsValidInputFile(path); err != nil {
		return pipeline.Input{}, &reconerror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "CSV or XLSX",
			Msg:            "input file rejected",
			Err:            err,
		}
	}

	in := pipeline.Input{Role: role, Name: fileutils.BaseName(path)}

	l.logger.Debug("Loading dataset",
		logging.F(logging.FieldRole, role),
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldEncoding, l.encoding))

	if fileutils.Extension(path) == ".xlsx" {
		table, err := l.loadWorkbook(path)
		if err != nil {
			return pipeline.Input{}, err
		}
		in.Table = table
		return in, nil
	}

	text, err := l.loadText(path)
	if err != nil {
		return pipeline.Input{}, err
	}
	in.Text = text
	return in, nil
}

func (l *Loader) loadText(path string) (string, error) {
	f, err := fileutils.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.WithError(cerr).Warn("Failed to close input file", logging.F(logging.FieldFile, path))
		}
	}()

	var r io.Reader = f
	if dec := decoderFor(l.encoding); dec != nil {
		r = transform.NewReader(f, dec.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &reconerror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: fmt.Sprintf("%s text", l.encoding),
			Msg:            "cannot decode file",
			Err:            err,
		}
	}
	return string(data), nil
}

func (l *Loader) loadWorkbook(path string) (*tabular.Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &reconerror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "XLSX workbook",
			Msg:            "cannot open workbook",
			Err:            err,
		}
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			l.logger.WithError(cerr).Warn("Failed to close workbook", logging.F(logging.FieldFile, path))
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &reconerror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "XLSX workbook",
			Msg:            "no sheets found",
		}
	}

	rows, err := readSheet(wb, sheets[0])
	if err != nil {
		return nil, &reconerror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "XLSX workbook",
			Msg:            fmt.Sprintf("cannot read sheet %q", sheets[0]),
			Err:            err,
		}
	}

	// Leading blank rows are skipped, as in text input.
	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, &reconerror.ParseError{
			Source: fileutils.BaseName(path),
			Reason: "no header line found",
			Err:    reconerror.ErrEmptyInput,
		}
	}

	if len(sheets) > 1 {
		l.logger.Info("Workbook has several sheets, reading the first",
			logging.F(logging.FieldFile, path),
			logging.F("sheet", sheets[0]),
			logging.F(logging.FieldCount, len(sheets)))
	}

	return tabular.FromRecords(rows[0], rows[1:])
}

// readSheet returns the unformatted cell values of a sheet, so a number
// shown as "2,500" arrives as "2500". Cells whose formatted text is a
// recognizable date keep that text instead of the date serial number.
func readSheet(wb *excelize.File, sheet string) ([][]string, error) {
	raw, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	formatted, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	for i, row := range raw {
		if i >= len(formatted) {
			break
		}
		for j, value := range row {
			if j >= len(formatted[i]) || formatted[i][j] == value {
				continue
			}
			if _, _, err := dateutils.ParseDate(formatted[i][j]); err == nil {
				row[j] = formatted[i][j]
			}
		}
	}
	return raw, nil
}

func decoderFor(name string) encoding.Encoding {
	switch name {
	case "windows-1252":
		return charmap.Windows1252
	case "iso-8859-1":
		return charmap.ISO8859_1
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
