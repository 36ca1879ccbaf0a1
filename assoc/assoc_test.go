package assoc

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seirana/wesscdrs/threshold"
)

func fitTestCurve(t *testing.T) threshold.Curve {
	t.Helper()
	curve, err := threshold.Fit(150, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	return curve
}

func TestEvaluateSignificantRecord(t *testing.T) {
	curve := fitTestCurve(t)

	recs := []GroupRecord{
		{Group: "hepatocyte", NCell: 200, AssocMCP: 0.01, HeteroMCP: 0.2, NFDR: 20},
	}

	ev, err := Evaluate("Liver", "PSC", recs, curve, Params{MinCellCount: 150, Floor: 0.005})
	if err != nil {
		t.Fatal(err)
	}

	rec := ev.All[0]
	if math.Abs(rec.Percent-10.0) > 1e-12 {
		t.Fatalf("percent = %v, expected 10.0", rec.Percent)
	}
	// threshold(200) for the (150, 5, 100) curve is ~4.44.
	if rec.Threshold < 4 || rec.Threshold > 5 {
		t.Fatalf("threshold(200) = %v, expected ~4.4", rec.Threshold)
	}
	if !rec.Significant {
		t.Fatalf("record should be significant: %+v", rec)
	}
	if len(ev.Significant) != 1 {
		t.Fatalf("record should be in the significant subset: %+v", ev)
	}
}

func TestEvaluateNoFDRCells(t *testing.T) {
	curve := fitTestCurve(t)

	recs := []GroupRecord{
		// Even with a large, strongly associated group, no FDR cells means
		// no threshold and no significance.
		{Group: "stellate cell", NCell: 5000, AssocMCP: 0.001, HeteroMCP: 0.01, NFDR: 0},
	}

	ev, err := Evaluate("Liver", "PSC", recs, curve, Params{MinCellCount: 150, Floor: 0.005})
	if err != nil {
		t.Fatal(err)
	}

	rec := ev.All[0]
	if rec.Threshold != 0 || rec.Significant {
		t.Fatalf("n_fdr=0 must yield threshold=0 and significant=false: %+v", rec)
	}
	if len(ev.Significant) != 0 {
		t.Fatalf("n_fdr=0 record must be excluded from the significant subset")
	}
}

func TestEvaluateSubsetFilters(t *testing.T) {
	curve := fitTestCurve(t)
	p := Params{MinCellCount: 150, Floor: 0.005}

	for _, v := range []struct {
		rec      GroupRecord
		inSubset bool
	}{
		{GroupRecord{Group: "a", NCell: 149, AssocMCP: 0.01, NFDR: 5}, false}, // too few cells
		{GroupRecord{Group: "b", NCell: 150, AssocMCP: 0.06, NFDR: 5}, false}, // assoc_mcp too large
		{GroupRecord{Group: "c", NCell: 150, AssocMCP: 0.05, NFDR: 5}, true},
		{GroupRecord{Group: "d", NCell: 0, AssocMCP: 0.01, NFDR: 0}, false},
	} {
		ev, err := Evaluate("T", "X", []GroupRecord{v.rec}, curve, p)
		if err != nil {
			t.Fatal(err)
		}
		if got := len(ev.Significant) == 1; got != v.inSubset {
			t.Fatalf("subset membership for %+v: got %v, expected %v", v.rec, got, v.inSubset)
		}
	}
}

func TestEvaluateZeroCells(t *testing.T) {
	curve := fitTestCurve(t)

	ev, err := Evaluate("T", "X", []GroupRecord{{Group: "empty", NCell: 0, NFDR: 0}}, curve, Params{MinCellCount: 150, Floor: 0.005})
	if err != nil {
		t.Fatal(err)
	}
	if rec := ev.All[0]; rec.Percent != 0 || rec.Threshold != 0 || rec.Significant {
		t.Fatalf("zero-cell group must evaluate to all zeroes: %+v", rec)
	}
}

const groupFile = "group\tn_cell\tassoc_mcp\thetero_mcp\tn_fdr_0.05\n" +
	"hepatocyte\t1821\t0.001\t0.3\t400\n" +
	"endothelial cell, of hepatic sinusoid\t200\t0.01\t\t20\n" +
	"B cell\t80\t\t0.5\t0\n"

func TestReadGroupFile(t *testing.T) {
	recs, err := ReadGroupFile(strings.NewReader(groupFile), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	// Commas in group names become underscores.
	if recs[1].Group != "endothelial cell_ of hepatic sinusoid" {
		t.Fatalf("comma not replaced in group name: %q", recs[1].Group)
	}
	// Empty numeric cells coerce to zero.
	if recs[1].HeteroMCP != 0 || recs[2].AssocMCP != 0 {
		t.Fatalf("empty cells must coerce to zero: %+v", recs)
	}
	if recs[0].NCell != 1821 || recs[0].NFDR != 400 {
		t.Fatalf("numeric parse mismatch: %+v", recs[0])
	}
}

func TestReadGroupFileSchemaError(t *testing.T) {
	_, err := ReadGroupFile(strings.NewReader("group\tn_cell\tassoc_mcp\nx\t1\t0.5\n"), "broken.tsv")
	var se SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.File != "broken.tsv" {
		t.Fatalf("SchemaError must name the file: %+v", se)
	}
	if len(se.Missing) != 2 {
		t.Fatalf("expected hetero_mcp and n_fdr_0.05 to be reported missing: %+v", se.Missing)
	}
}

func TestReadNameList(t *testing.T) {
	names, err := ReadNameList(strings.NewReader("tissue\nLiver\nKidney\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Liver" || names[1] != "Kidney" {
		t.Fatalf("unexpected name list: %+v", names)
	}
}

func TestBatchRun(t *testing.T) {
	dir := t.TempDir()

	// Liver/PSC exists; Kidney/PSC is deliberately missing.
	if err := os.WriteFile(filepath.Join(dir, "Liver_PSC.tsv"), []byte(groupFile), 0o644); err != nil {
		t.Fatal(err)
	}

	b := Batch{
		Curve:  fitTestCurve(t),
		Params: Params{MinCellCount: 150, Floor: 0.005},
		GroupFilePath: func(tissue, trait string) string {
			return filepath.Join(dir, tissue+"_"+trait+".tsv")
		},
		Workers: 4,
	}

	results, err := b.Run(context.Background(), []string{"Liver", "Kidney"}, []string{"PSC"})
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 pair results, got %d", len(results))
	}
	if results[0].Tissue != "Liver" || results[0].Skipped {
		t.Fatalf("Liver pair should have been evaluated: %+v", results[0])
	}
	if len(results[0].All) != 3 {
		t.Fatalf("expected 3 evaluated records for Liver, got %d", len(results[0].All))
	}
	if !results[1].Skipped {
		t.Fatalf("missing Kidney file should be skipped, not fatal: %+v", results[1])
	}

	agg := Aggregate(results)
	if len(agg) != len(results[0].Significant) {
		t.Fatalf("aggregate should hold only the Liver significant subset: %d", len(agg))
	}
}

// Pairs are decoded concurrently when Workers > 1; run under -race.
func TestBatchRunConcurrent(t *testing.T) {
	dir := t.TempDir()

	tissues := []string{"Liver", "Kidney", "Lung", "Spleen"}
	traits := []string{"PSC", "UC", "CD"}
	for _, tissue := range tissues {
		for _, trait := range traits {
			if err := os.WriteFile(filepath.Join(dir, tissue+"_"+trait+".tsv"), []byte(groupFile), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	b := Batch{
		Curve:  fitTestCurve(t),
		Params: Params{MinCellCount: 150, Floor: 0.005},
		GroupFilePath: func(tissue, trait string) string {
			return filepath.Join(dir, tissue+"_"+trait+".tsv")
		},
		Workers: 4,
	}

	results, err := b.Run(context.Background(), tissues, traits)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != len(tissues)*len(traits) {
		t.Fatalf("expected %d pair results, got %d", len(tissues)*len(traits), len(results))
	}
	for i, res := range results {
		wantTissue := tissues[i/len(traits)]
		wantTrait := traits[i%len(traits)]
		if res.Tissue != wantTissue || res.Trait != wantTrait {
			t.Fatalf("result %d is %s/%s, expected %s/%s", i, res.Tissue, res.Trait, wantTissue, wantTrait)
		}
		if res.Skipped || len(res.All) != 3 {
			t.Fatalf("pair %s/%s should have 3 evaluated records: %+v", res.Tissue, res.Trait, res)
		}
	}
}

func TestWriteEvaluationCSV(t *testing.T) {
	recs := []EvaluatedRecord{
		{
			Tissue: "Liver", Trait: "PSC", Group: "hepatocyte",
			NCell: 200, AssocMCP: 0.01, HeteroMCP: 0.2, NFDR: 20,
			Percent: 10, Threshold: 4.438812345678, Significant: true,
		},
	}

	var buf bytes.Buffer
	if err := WriteEvaluationCSV(&buf, recs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tissue,trait,cell,n cell") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "Liver,PSC,hepatocyte,200,0.01,0.2,10,4.43881,true" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}
