// wes2vcf converts a whitespace-delimited WES single-marker test table into
// a VCFv4.2 skeleton suitable for rsID annotation with bcftools.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/seirana/wesscdrs"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

// Positional columns of the single-marker table.
const (
	colChrom = iota
	colPos
	colMarkerID
	colRef
	colAlt
)

func main() {
	defer STDOUT.Flush()

	var markers, out string
	flag.StringVar(&markers, "markers", "", "Path to the whitespace-delimited single-marker test table (may be zip- or gzip-compressed).")
	flag.StringVar(&out, "out", "", "Output VCF path. Prints to stdout if empty.")
	flag.Parse()

	if markers == "" {
		log.Println("wes2vcf")
		flag.PrintDefaults()
		os.Exit(1)
	}

	w := STDOUT
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			log.Fatalln(err)
		}
		defer f.Close()
		w = bufio.NewWriterSize(f, BufferSize)
		defer w.Flush()
	}

	if err := run(markers, w); err != nil {
		log.Fatalln(err)
	}
}

func run(markers string, w *bufio.Writer) error {
	r, err := wesscdrs.Open(markers)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintln(w, "##fileformat=VCFv4.2")
	fmt.Fprintln(w, strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t"))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, BufferSize), 10*BufferSize)

	i := 0
	for ; scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		// Header row
		if i == 0 {
			continue
		}

		if len(fields) <= colAlt {
			return fmt.Errorf("marker table row %d has %d columns, expected at least %d", i, len(fields), colAlt+1)
		}

		chrom := strings.TrimPrefix(fields[colChrom], "chr")
		fmt.Fprintln(w, strings.Join([]string{chrom, fields[colPos], ".", fields[colRef], fields[colAlt], ".", ".", "."}, "\t"))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	log.Printf("Converted %d markers", i-1)

	return nil
}
