// vcf2magma generates the MAGMA gene-based test inputs from an
// rsID-annotated VCF and the original single-marker test table: a SNP
// location file (ID CHROM POS) and a SNP p-value file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/vcfgo"

	"github.com/seirana/wesscdrs"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
)

const BufferSize = 4096 * 8

type site struct {
	ID    string
	Chrom string
	Pos   uint64
}

func main() {
	var vcfPath, markers, snplocOut, pvalOut string
	flag.StringVar(&vcfPath, "vcf", "", "Path to the rsID-annotated VCF (may be compressed).")
	flag.StringVar(&markers, "markers", "", "Path to the whitespace-delimited single-marker test table with a p.value column.")
	flag.StringVar(&snplocOut, "snploc", "", "Output path for the MAGMA SNP location file.")
	flag.StringVar(&pvalOut, "pvals", "", "Output path for the MAGMA SNP p-value file.")
	flag.Parse()

	if vcfPath == "" || markers == "" || snplocOut == "" || pvalOut == "" {
		log.Println("vcf2magma")
		flag.PrintDefaults()
		os.Exit(1)
	}

	sites, err := readVCFSites(vcfPath)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Read %d variants from %s", len(sites), vcfPath)

	pvals, err := readMarkerPValues(markers)
	if err != nil {
		log.Fatalln(err)
	}

	// MAGMA matches the two files row by row. A count mismatch would
	// silently misalign variants and p-values, so it is fatal.
	if len(sites) != len(pvals) {
		log.Fatalf("%d variants in %s but %d rows in %s; inputs are misaligned", len(sites), vcfPath, len(pvals), markers)
	}

	if err := writeSNPLoc(snplocOut, sites); err != nil {
		log.Fatalln(err)
	}
	if err := writePValues(pvalOut, sites, pvals); err != nil {
		log.Fatalln(err)
	}
}

func readVCFSites(path string) ([]site, error) {
	r, err := wesscdrs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rdr, err := vcfgo.NewReader(bufio.NewReaderSize(r, BufferSize), true)
	if err != nil {
		return nil, err
	}

	var out []site
	for {
		variant := rdr.Read()
		if variant == nil {
			break
		}
		out = append(out, site{ID: variant.Id(), Chrom: variant.Chrom(), Pos: variant.Pos})
	}

	return out, nil
}

// readMarkerPValues extracts the p.value column, keeping row order.
func readMarkerPValues(path string) ([]string, error) {
	r, err := wesscdrs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, BufferSize), 10*BufferSize)

	pCol := -1
	var out []string
	for i := 0; scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if i == 0 {
			for j, name := range fields {
				if name == "p.value" {
					pCol = j
				}
			}
			if pCol < 0 {
				return nil, fmt.Errorf("p.value not found in %v", fields)
			}
			continue
		}

		if pCol >= len(fields) {
			return nil, fmt.Errorf("marker table row %d has no p.value field", i)
		}
		out = append(out, fields[pCol])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func writeSNPLoc(path string, sites []site) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, BufferSize)
	defer w.Flush()

	for _, s := range sites {
		fmt.Fprintln(w, strings.Join([]string{s.ID, s.Chrom, strconv.FormatUint(s.Pos, 10)}, " "))
	}

	return nil
}

func writePValues(path string, sites []site, pvals []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, BufferSize)
	defer w.Flush()

	for i, s := range sites {
		fmt.Fprintln(w, s.ID+"\t"+pvals[i])
	}

	return nil
}
