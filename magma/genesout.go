// Package magma parses the gene-based test output (.genes.out) written by
// MAGMA.
package magma

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// GeneResult is one row of a .genes.out file. Gene holds whatever
// identifier MAGMA was run with, typically an Entrez ID; Symbol is filled
// in later by the caller when a lookup is available.
type GeneResult struct {
	Gene   string
	Chrom  string
	Start  int
	Stop   int
	NSNPs  int
	ZStat  float64
	P      float64
	Symbol string
}

// ZStat values above this are clipped during top-N selection; they would
// otherwise dominate the gene-set weights.
const MaxZStat = 10

// ReadGenesOut parses a whitespace-delimited .genes.out table. Column
// positions are taken from the header, so extra columns and differing MAGMA
// versions are tolerated as long as GENE, ZSTAT and P are present.
func ReadGenesOut(r io.Reader) ([]GeneResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	cols := map[string]int{}
	var out []GeneResult
	for i := 0; scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if i == 0 {
			for j, name := range fields {
				cols[name] = j
			}
			for _, required := range []string{"GENE", "ZSTAT", "P"} {
				if _, ok := cols[required]; !ok {
					return nil, fmt.Errorf("magma: .genes.out header is missing %s: %v", required, fields)
				}
			}
			continue
		}

		res := GeneResult{Gene: fields[cols["GENE"]]}

		var err error
		if res.ZStat, err = strconv.ParseFloat(fields[cols["ZSTAT"]], 64); err != nil {
			return nil, pfx.Err(err)
		}
		if res.P, err = strconv.ParseFloat(fields[cols["P"]], 64); err != nil {
			return nil, pfx.Err(err)
		}

		if j, ok := cols["CHR"]; ok && j < len(fields) {
			res.Chrom = fields[j]
		}
		if j, ok := cols["START"]; ok && j < len(fields) {
			res.Start, _ = strconv.Atoi(fields[j])
		}
		if j, ok := cols["STOP"]; ok && j < len(fields) {
			res.Stop, _ = strconv.Atoi(fields[j])
		}
		if j, ok := cols["NSNPS"]; ok && j < len(fields) {
			res.NSNPs, _ = strconv.Atoi(fields[j])
		}

		out = append(out, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// TopByZStat returns the n results with the largest ZSTAT, descending, with
// ZSTAT clipped at MaxZStat. Ties keep input order. The input slice is not
// modified.
func TopByZStat(results []GeneResult, n int) []GeneResult {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return results[order[i]].ZStat > results[order[j]].ZStat
	})

	if n > len(order) {
		n = len(order)
	}

	out := make([]GeneResult, 0, n)
	for _, idx := range order[:n] {
		res := results[idx]
		if res.ZStat > MaxZStat {
			res.ZStat = MaxZStat
		}
		out = append(out, res)
	}

	return out
}

// Significant returns the results with P at or below maxP, in input order.
func Significant(results []GeneResult, maxP float64) []GeneResult {
	var out []GeneResult
	for _, res := range results {
		if res.P <= maxP {
			out = append(out, res)
		}
	}
	return out
}
