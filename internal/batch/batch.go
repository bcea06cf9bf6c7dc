// Package batch drives the mapping engine over rows of a CSV file, one entity
// pair per row.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/fieldshift/fieldshift/internal/mapping"
)

// Row is one entity pair read from the CSV. DestID 0 means "same entity".
type Row struct {
	Line     int   `json:"line"`
	SourceID int64 `json:"source_id"`
	DestID   int64 `json:"dest_id,omitempty"`

	// Err is set when the row could not be parsed.
	Err error `json:"-"`
}

var sourceHeaders = []string{"source_id", "source", "id", "post_id"}
var destHeaders = []string{"dest_id", "dest", "destination", "target_id"}

// ReadRows parses source/destination ID pairs. A header row is detected when the
// first cell is not numeric; its source_id/dest_id columns are then used.
// Without a header the first two columns are positional. Unparseable rows are
// returned with Err set so callers can report them and continue.
func ReadRows(r io.Reader, encoding string) ([]Row, error) {
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") {
		enc, err := ianaindex.IANA.Encoding(encoding)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported encoding '%s'", encoding)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	srcCol, destCol := 0, 1
	var rows []Row
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		if line == 1 && !isNumeric(record[0]) {
			srcCol = headerIndex(record, sourceHeaders, 0)
			destCol = headerIndex(record, destHeaders, -1)
			continue
		}
		rows = append(rows, parseRow(line, record, srcCol, destCol))
	}
	return rows, nil
}

func parseRow(line int, record []string, srcCol, destCol int) Row {
	row := Row{Line: line}
	if srcCol >= len(record) {
		row.Err = fmt.Errorf("missing source id column")
		return row
	}
	src, err := parseID(record[srcCol])
	if err != nil || src == 0 {
		row.Err = fmt.Errorf("invalid source id %q", record[srcCol])
		return row
	}
	row.SourceID = src

	if destCol >= 0 && destCol < len(record) && strings.TrimSpace(record[destCol]) != "" {
		dest, err := parseID(record[destCol])
		if err != nil {
			row.Err = fmt.Errorf("invalid destination id %q", record[destCol])
			return row
		}
		row.DestID = dest
	}
	return row
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func headerIndex(header, names []string, fallback int) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return fallback
}

// Mapper is the engine operation a batch runs per row.
type Mapper interface {
	Map(entityID int64, set mapping.Set, merge bool, destID int64) (*mapping.Report, error)
}

// RowResult is the outcome of one row.
type RowResult struct {
	Row    Row             `json:"row"`
	Report *mapping.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Summary totals a batch run.
type Summary struct {
	Rows    int `json:"rows"`
	Failed  int `json:"failed"`
	Written int `json:"written"`
	Kept    int `json:"kept"`
	Skipped int `json:"skipped"`
}

// Run maps every row sequentially. Row errors are recorded and never stop the run.
// onRow, if set, is called after each row so results can be streamed.
func Run(rows []Row, m Mapper, set mapping.Set, merge bool, onRow func(RowResult)) ([]RowResult, Summary) {
	results := make([]RowResult, 0, len(rows))
	var sum Summary

	for _, row := range rows {
		res := RowResult{Row: row}
		if row.Err != nil {
			res.Error = row.Err.Error()
		} else if report, err := m.Map(row.SourceID, set, merge, row.DestID); err != nil {
			res.Error = err.Error()
		} else {
			res.Report = report
			sum.Written += report.Count(mapping.StatusWritten)
			sum.Kept += report.Count(mapping.StatusSkippedMerge)
			sum.Skipped += report.Count(mapping.StatusSkippedError)
		}

		sum.Rows++
		if res.Error != "" {
			sum.Failed++
		}
		results = append(results, res)
		if onRow != nil {
			onRow(res)
		}
	}
	return results, sum
}
