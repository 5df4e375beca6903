// Package validation checks user-supplied paths, formats and encodings
// before they reach the pipeline.
package validation

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/mpr-recon/internal/fileutils"
)

// Output formats accepted by the report generator.
var OutputFormats = []string{"json", "yaml", "csv"}

// Input encodings accepted by the source loader.
var Encodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// Input extensions accepted by the source loader.
var InputExtensions = []string{".csv", ".txt", ".xlsx"}

// IsValidInputFile checks that path is a readable regular file with a
// supported extension.
func IsValidInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}

	ext := fileutils.Extension(path)
	for _, allowed := range InputExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported input file type %q for %s. Supported types are %s", ext, path, strings.Join(InputExtensions, ", "))
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s", format, strings.Join(OutputFormats, ", "))
}

// NormalizeEncoding maps encoding aliases to a name listed in Encodings.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return "utf-8"
	case "windows-1252", "cp1252", "windows1252":
		return "windows-1252"
	case "iso-8859-1", "latin-1", "latin1", "iso8859-1":
		return "iso-8859-1"
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// IsValidEncoding checks if the given input encoding is supported.
func IsValidEncoding(name string) error {
	normalized := NormalizeEncoding(name)
	for _, e := range Encodings {
		if normalized == e {
			return nil
		}
	}
	return fmt.Errorf("unsupported input encoding: %s. Supported encodings are %s", name, strings.Join(Encodings, ", "))
}

// IsValidDelimiter checks that a configured delimiter is a single character
// other than a line break.
func IsValidDelimiter(delim string) error {
	r := []rune(delim)
	if len(r) != 1 || r[0] == '\n' || r[0] == '\r' {
		return fmt.Errorf("delimiter must be a single character, got %q", delim)
	}
	return nil
}

// IsValidFilePermissions checks that a sensitive file grants nothing to others.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0644", mode.String())
	}
	return nil
}
