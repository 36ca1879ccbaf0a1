package plot

import (
	"bytes"
	"testing"

	"github.com/seirana/wesscdrs/magma"
	"github.com/seirana/wesscdrs/threshold"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestThresholdCurvePNG(t *testing.T) {
	curve, err := threshold.Fit(150, 5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	png, err := ThresholdCurve(curve, 100, 1e6, threshold.DefaultFloor)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("expected PNG bytes, got leading %v", png[:4])
	}
}

func TestManhattanPNG(t *testing.T) {
	results := []magma.GeneResult{
		{Gene: "1", Chrom: "1", ZStat: 1.5, P: 0.07},
		{Gene: "2", Chrom: "1", ZStat: 12.0, P: 2.91e-37},
		{Gene: "3", Chrom: "2", ZStat: 0.5, P: 0.31},
		{Gene: "4", Chrom: "2", ZStat: 2.5, P: 0.006},
		{Gene: "5", Chrom: "3", ZStat: 3.5, P: 0.0002},
	}

	png, err := Manhattan(results)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("expected PNG bytes, got leading %v", png[:4])
	}
}
