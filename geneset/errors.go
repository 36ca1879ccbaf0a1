package geneset

import (
	"fmt"
	"strings"
)

// ConfigError indicates invalid or conflicting build options. It is always
// raised before any computation starts.
type ConfigError string

func (e ConfigError) Error() string {
	return "geneset: configuration: " + string(e)
}

// DuplicateGeneError indicates repeated gene identifiers in a statistic
// table. Duplicates are never silently dropped or averaged; the caller must
// resolve them in the input.
type DuplicateGeneError struct {
	Genes []string
}

func (e DuplicateGeneError) Error() string {
	return fmt.Sprintf("geneset: gene names are not unique: %s. Please make sure the gene names are unique beforehand.", strings.Join(e.Genes, ","))
}
