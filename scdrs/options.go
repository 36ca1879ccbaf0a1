// Package scdrs is the boundary to the external single-cell disease
// relevance scoring engine: option validation, covariate preparation,
// score persistence and downstream-analysis dispatch. The scoring
// algorithm itself is behind the Engine interface.
package scdrs

import (
	"time"
)

// Control-matching options.
const (
	CtrlMatchMean    = "mean"
	CtrlMatchMeanVar = "mean_var"
)

// Cell-weighting options of the scoring engine.
const (
	WeightUniform = "uniform"
	WeightVS      = "vs"
	WeightInvStd  = "inv_std"
	WeightOD      = "od"
)

// Species names the engine accepts after normalization.
const (
	SpeciesHuman = "hsapiens"
	SpeciesMouse = "mmusculus"
)

var speciesSynonyms = map[string]string{
	"human":     SpeciesHuman,
	"hsapiens":  SpeciesHuman,
	"mouse":     SpeciesMouse,
	"mmusculus": SpeciesMouse,
}

// ConfigError indicates invalid or conflicting scoring options, surfaced
// before any work starts.
type ConfigError string

func (e ConfigError) Error() string {
	return "scdrs: configuration: " + string(e)
}

// Options mirrors the surface of the external scoring engine.
type Options struct {
	DatasetPath    string
	DatasetSpecies string
	GeneSetPath    string
	GeneSetSpecies string
	// CovariateFile may be empty when covariates are built from cell
	// metadata instead.
	CovariateFile string

	CtrlMatch string
	WeightOpt string
	// AdjProp names a cell-group annotation used to adjust for group
	// proportions; empty disables the adjustment.
	AdjProp string

	FilterData bool
	RawCount   bool

	NCtrl int

	ReturnCtrlRawScore  bool
	ReturnCtrlNormScore bool

	OutFolder string

	// Timeout bounds each external engine call; zero means no limit.
	Timeout time.Duration
}

// Validate checks the option enums and harmonizes the species names. When
// the dataset and gene-set species differ, both must normalize to one of
// the engine's known species.
func (o *Options) Validate() error {
	if o.CtrlMatch != CtrlMatchMean && o.CtrlMatch != CtrlMatchMeanVar {
		return ConfigError("ctrl-match-opt needs to be one of [mean, mean_var]; got " + o.CtrlMatch)
	}
	switch o.WeightOpt {
	case WeightUniform, WeightVS, WeightInvStd, WeightOD:
	default:
		return ConfigError("weight-opt needs to be one of [uniform, vs, inv_std, od]; got " + o.WeightOpt)
	}

	if o.DatasetSpecies != o.GeneSetSpecies {
		ds, ok := speciesSynonyms[o.DatasetSpecies]
		if !ok {
			return ConfigError("dataset species needs to be one of [mmusculus, hsapiens] unless it matches the gene-set species; got " + o.DatasetSpecies)
		}
		gs, ok := speciesSynonyms[o.GeneSetSpecies]
		if !ok {
			return ConfigError("gene-set species needs to be one of [mmusculus, hsapiens] unless it matches the dataset species; got " + o.GeneSetSpecies)
		}
		o.DatasetSpecies = ds
		o.GeneSetSpecies = gs
	}

	if o.NCtrl <= 0 {
		o.NCtrl = 1000
	}

	return nil
}

// ConvertSpeciesName normalizes a species synonym, e.g. human to hsapiens.
func ConvertSpeciesName(name string) (string, error) {
	if s, ok := speciesSynonyms[name]; ok {
		return s, nil
	}
	return "", ConfigError("unknown species name " + name)
}
