// Package testkit generates synthetic patient-encounter datasets for
// tests and demos. The generator is deterministic for a fixed seed.
package testkit

import (
	"math/rand"

	"fairlens/domain/table"
)

// GeneratorConfig configures the synthetic dataset generator
type GeneratorConfig struct {
	RowCount      int     `json:"row_count"`
	BaseRate      float64 `json:"base_rate"`
	GroupBias     float64 `json:"group_bias"`
	NoiseRate     float64 `json:"noise_rate"`
	MissingRate   float64 `json:"missing_rate"`
	CohortColumns bool    `json:"cohort_columns"`
	Seed          int64   `json:"seed"`
}

// DefaultConfig returns sensible defaults for dataset generation
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		RowCount:    500,
		BaseRate:    0.35,
		GroupBias:   0.15,
		NoiseRate:   0.10,
		MissingRate: 0.02,
		Seed:        42,
	}
}

// Dataset bundles everything a report run needs: the feature table, the
// protected-attribute codes, and the three target vectors.
type Dataset struct {
	X        *table.Table
	PrtcAttr []float64
	YTrue    []float64
	YPred    []float64
	YProb    []float64
	Cohorts  *table.Table
}

// Generator produces synthetic encounter data with a controllable
// group-dependent bias in the predictions.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// New creates a generator from config
func New(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	ageGroups  = []string{"18-34", "35-49", "50-64", "65+"}
	languages  = []string{"english", "spanish", "other"}
	insurances = []string{"private", "medicare", "medicaid"}
	regions    = []string{"north", "south"}
)

// Generate builds the full dataset. The protected attribute is a binary
// sex code (1 privileged). Predictions track the target with noise, plus
// an extra error rate for the unprivileged group scaled by GroupBias.
func (g *Generator) Generate() *Dataset {
	n := g.config.RowCount
	ds := &Dataset{
		PrtcAttr: make([]float64, n),
		YTrue:    make([]float64, n),
		YPred:    make([]float64, n),
		YProb:    make([]float64, n),
	}

	age := make([]interface{}, n)
	lang := make([]interface{}, n)
	insurance := make([]interface{}, n)
	los := make([]interface{}, n)
	region := make([]interface{}, n)

	for i := 0; i < n; i++ {
		priv := 0.0
		if g.rng.Float64() < 0.5 {
			priv = 1.0
		}
		ds.PrtcAttr[i] = priv

		age[i] = g.pick(ageGroups)
		lang[i] = g.pick(languages)
		if g.rng.Float64() < g.config.MissingRate {
			insurance[i] = nil
		} else {
			insurance[i] = g.pick(insurances)
		}
		// Length of stay is continuous so stratification exercises the
		// quantile binning path.
		los[i] = 1.0 + g.rng.ExpFloat64()*4.0
		region[i] = g.pick(regions)

		y := 0.0
		if g.rng.Float64() < g.config.BaseRate {
			y = 1.0
		}
		ds.YTrue[i] = y

		flipRate := g.config.NoiseRate
		if priv == 0 {
			flipRate += g.config.GroupBias
		}
		pred := y
		if g.rng.Float64() < flipRate {
			pred = 1 - pred
		}
		ds.YPred[i] = pred

		prob := 0.15 + 0.7*pred + (g.rng.Float64()-0.5)*0.2
		if prob < 0 {
			prob = 0
		}
		if prob > 1 {
			prob = 1
		}
		ds.YProb[i] = prob
	}

	ds.X = table.New()
	_ = ds.X.AddColumn("age_group", age)
	_ = ds.X.AddColumn("language", lang)
	_ = ds.X.AddColumn("insurance", insurance)
	_ = ds.X.AddColumn("length_of_stay", los)

	if g.config.CohortColumns {
		ds.Cohorts = table.New()
		_ = ds.Cohorts.AddColumn("region", region)
	}
	return ds
}

func (g *Generator) pick(vals []string) string {
	return vals[g.rng.Intn(len(vals))]
}
