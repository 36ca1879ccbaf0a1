// Package plot renders the reporting figures of the pipeline: the fitted
// threshold curve and the MAGMA Manhattan plot. Functions return PNG bytes;
// callers own all file I/O.
package plot

import (
	"bytes"
	"math"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/seirana/wesscdrs/magma"
	"github.com/seirana/wesscdrs/threshold"
)

// The original MAGMA reports drew the gene-based genome-wide significance
// line at this -log10(p) height (P = 2.5e-6 over ~18k genes).
const geneBasedSignificanceLine = 5.58

// ThresholdCurve plots the fitted curve between xMin and xMax cell counts,
// with the floor drawn as a dashed line. The x axis is log10(cell count).
func ThresholdCurve(curve threshold.Curve, xMin, xMax, floor float64) ([]byte, error) {
	const points = 200

	xs := make([]float64, 0, points)
	ys := make([]float64, 0, points)
	l0, l1 := math.Log10(xMin), math.Log10(xMax)
	for i := 0; i < points; i++ {
		lx := l0 + (l1-l0)*float64(i)/float64(points-1)
		y, err := curve.Evaluate(math.Pow(10, lx), floor)
		if err != nil {
			return nil, err
		}
		xs = append(xs, lx)
		ys = append(ys, y)
	}

	yMax, err := stats.Max(ys)
	if err != nil {
		return nil, pfx.Err(err)
	}

	graph := chart.Chart{
		Width:  768,
		Height: 512,
		XAxis: chart.XAxis{
			Name: "log10 cell count",
		},
		YAxis: chart.YAxis{
			Name:  "threshold (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "threshold",
				XValues: xs,
				YValues: ys,
			},
			chart.ContinuousSeries{
				Name:    "minimum threshold",
				XValues: []float64{l0, l1},
				YValues: []float64{floor, floor},
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("2ca02c"),
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}

	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, pfx.Err(err)
	}

	return buffer.Bytes(), nil
}

// Manhattan plots -log10(p) per gene in input order, alternating colors by
// chromosome, with the gene-based significance line.
func Manhattan(results []magma.GeneResult) ([]byte, error) {
	evenX, evenY := make([]float64, 0, len(results)), make([]float64, 0, len(results))
	oddX, oddY := make([]float64, 0, len(results)), make([]float64, 0, len(results))

	var logps []float64
	prevChrom := ""
	parity := 0
	for i, res := range results {
		if res.Chrom != prevChrom {
			if prevChrom != "" {
				parity++
			}
			prevChrom = res.Chrom
		}

		logp := -math.Log10(res.P)
		if math.IsInf(logp, 1) {
			logp = 300
		}
		logps = append(logps, logp)

		if parity%2 == 0 {
			evenX, evenY = append(evenX, float64(i)), append(evenY, logp)
		} else {
			oddX, oddY = append(oddX, float64(i)), append(oddY, logp)
		}
	}

	yMax, err := stats.Max(logps)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if yMax < geneBasedSignificanceLine {
		yMax = geneBasedSignificanceLine
	}

	scatter := func(name, hexColor string, xs, ys []float64) chart.ContinuousSeries {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    2,
				DotColor:    drawing.ColorFromHex(hexColor),
			},
		}
	}

	// go-chart rejects series with fewer than 2 points, so only include
	// the parities that are populated.
	series := []chart.Series{}
	if len(evenX) > 1 {
		series = append(series, scatter("odd chromosomes", "7FC97F", evenX, evenY))
	}
	if len(oddX) > 1 {
		series = append(series, scatter("even chromosomes", "FDC086", oddX, oddY))
	}
	series = append(series, chart.ContinuousSeries{
		XValues: []float64{0, float64(len(results))},
		YValues: []float64{geneBasedSignificanceLine, geneBasedSignificanceLine},
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("7f7f7f"),
			StrokeDashArray: []float64{5.0, 5.0},
		},
	})

	graph := chart.Chart{
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name: "gene index",
		},
		YAxis: chart.YAxis{
			Name:  "-log10 p",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(yMax + 1)},
		},
		Series: series,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, pfx.Err(err)
	}

	return buffer.Bytes(), nil
}
