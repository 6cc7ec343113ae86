package format

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/stahnma/gh-starscan/internal/github"
)

const (
	// BOM marks the report as UTF-8 for spreadsheet applications.
	BOM = "\uFEFF"

	// Header is the label row written before any records.
	Header = "Repository,URL,Stars,Forks,Description"

	MaxDescriptionRunes = 200
	Ellipsis            = "..."
)

// lineBreaks maps every newline variant and tabs to a single space each.
var lineBreaks = strings.NewReplacer(
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
	"\u0085", " ",
	"\u2028", " ",
	"\u2029", " ",
)

// CleanDescription flattens free text to one line without control
// characters, cut to MaxDescriptionRunes with Ellipsis appended when cut.
func CleanDescription(s string) string {
	s = lineBreaks.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if runes := []rune(s); len(runes) > MaxDescriptionRunes {
		s = string(runes[:MaxDescriptionRunes]) + Ellipsis
	}
	return s
}

// SanitizeDescription returns the description as an always-quoted CSV field.
func SanitizeDescription(s string) string {
	return quote(CleanDescription(s))
}

// QuoteIdentifier quotes s only when it holds a comma, quote or line break.
func QuoteIdentifier(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Row renders one record as a five-field CSV line without the terminator.
func Row(r github.Record) string {
	return strings.Join([]string{
		QuoteIdentifier(r.FullName),
		r.URL,
		strconv.Itoa(r.Stars),
		strconv.Itoa(r.Forks),
		SanitizeDescription(r.Description),
	}, ",")
}

// WriteCSV writes the BOM, the header and one line per record to w.
func WriteCSV(w io.Writer, records []github.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM + Header + "\n"); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := bw.WriteString(Row(r) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportFile writes records to a new file at path. The file is closed on
// every path; a failed export may leave a truncated file behind.
func ExportFile(path string, records []github.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	if err := WriteCSV(f, records); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

// FileName returns "<prefix>_<YYYYMMDD_HHMMSS>.csv" for the run started at t.
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, t.Format("20060102_150405"))
}
