package assoc

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

// groupRow is the raw tab-delimited layout written by the scoring engine's
// group analysis. Numeric cells may be empty; they decode to null and are
// coerced to zero.
type groupRow struct {
	Group     string     `csv:"group"`
	NCell     null.Float `csv:"n_cell"`
	AssocMCP  null.Float `csv:"assoc_mcp"`
	HeteroMCP null.Float `csv:"hetero_mcp"`
	NFDR      null.Float `csv:"n_fdr_0.05"`
}

var requiredColumns = []string{"group", "n_cell", "assoc_mcp", "hetero_mcp", "n_fdr_0.05"}

// ReadGroupFile parses a group-analysis table. name is used in error
// messages only. Extra columns are ignored; commas inside group names are
// replaced with underscores so the groups stay intact in downstream CSVs.
func ReadGroupFile(r io.Reader, name string) ([]GroupRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if err := checkSchema(raw, name); err != nil {
		return nil, err
	}

	// A locally constructed reader keeps concurrent pairs from touching
	// gocsv's package-global reader factory.
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = '\t'
	cr.LazyQuotes = true

	rows := []*groupRow{}
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]GroupRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, GroupRecord{
			Group:     strings.ReplaceAll(row.Group, ",", "_"),
			NCell:     row.NCell.ValueOrZero(),
			AssocMCP:  row.AssocMCP.ValueOrZero(),
			HeteroMCP: row.HeteroMCP.ValueOrZero(),
			NFDR:      row.NFDR.ValueOrZero(),
		})
	}

	return out, nil
}

func checkSchema(raw []byte, name string) error {
	headerLine := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		headerLine = raw[:i]
	}

	have := make(map[string]bool)
	for _, col := range strings.Split(strings.TrimRight(string(headerLine), "\r\n"), "\t") {
		have[col] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return SchemaError{File: name, Missing: missing}
	}

	return nil
}

// ReadNameList parses a single-column CSV (header plus one name per row),
// the format of the tissue and trait list files.
func ReadNameList(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []string
	for i := 0; ; i++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		// Skip the header row.
		if i == 0 {
			continue
		}
		if len(rec) < 1 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(rec[0]))
	}

	return out, nil
}
