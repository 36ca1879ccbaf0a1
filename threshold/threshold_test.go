package threshold

import (
	"errors"
	"math"
	"testing"
)

func TestFitReproducesAnchors(t *testing.T) {
	for _, v := range []struct {
		minCellCount   float64
		upperThreshold float64
		scaleFactor    float64
	}{
		{150, 5, 1000},
		{150, 5, 100},
		{20, 10, 50},
	} {
		curve, err := Fit(v.minCellCount, v.upperThreshold, v.scaleFactor)
		if err != nil {
			t.Fatalf("Fit(%+v): %v", v, err)
		}

		// Use a floor well below both anchors so clamping cannot mask
		// a bad fit.
		got, err := curve.Evaluate(v.minCellCount, 0)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-v.upperThreshold) > 1e-9 {
			t.Fatalf("Fit(%+v): threshold at lower anchor = %v, expected %v", v, got, v.upperThreshold)
		}

		got, err = curve.Evaluate(v.minCellCount*v.scaleFactor, 0)
		if err != nil {
			t.Fatal(err)
		}
		if expected := v.upperThreshold / v.scaleFactor; math.Abs(got-expected) > 1e-9 {
			t.Fatalf("Fit(%+v): threshold at upper anchor = %v, expected %v", v, got, expected)
		}
	}
}

func TestCanonicalScenario(t *testing.T) {
	curve, err := Fit(150, 5, 100)
	if err != nil {
		t.Fatal(err)
	}

	at150, err := curve.Evaluate(150, 0.005)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(at150-5.0) > 1e-9 {
		t.Fatalf("threshold(150) = %v, expected 5.0", at150)
	}

	at15000, err := curve.Evaluate(15000, 0.005)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(at15000-0.05) > 1e-9 {
		t.Fatalf("threshold(15000) = %v, expected 0.05", at15000)
	}
}

func TestEvaluateMonotoneNonIncreasing(t *testing.T) {
	curve, err := Fit(150, 5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	prev := math.Inf(1)
	for n := 2.0; n < 1e7; n *= 1.5 {
		got, err := curve.Evaluate(n, DefaultFloor)
		if err != nil {
			t.Fatal(err)
		}
		if got > prev {
			t.Fatalf("threshold(%v) = %v exceeds threshold at smaller count %v", n, got, prev)
		}
		prev = got
	}
}

func TestEvaluateFloor(t *testing.T) {
	curve, err := Fit(150, 5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	// Far beyond the upper anchor the raw curve dips below the floor.
	got, err := curve.Evaluate(1e9, DefaultFloor)
	if err != nil {
		t.Fatal(err)
	}
	if got != DefaultFloor {
		t.Fatalf("threshold(1e9) = %v, expected the floor %v", got, DefaultFloor)
	}
}

func TestDegenerateFits(t *testing.T) {
	for _, v := range []struct {
		minCellCount float64
		scaleFactor  float64
	}{
		{1, 1000},
		{0, 1000},
		{150, 1},
		{150, 0.5},
	} {
		_, err := Fit(v.minCellCount, 5, v.scaleFactor)
		var dme DegenerateModelError
		if !errors.As(err, &dme) {
			t.Fatalf("Fit(%+v): expected DegenerateModelError, got %v", v, err)
		}
	}
}

func TestEvaluateInvalidCellCount(t *testing.T) {
	curve, err := Fit(150, 5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []float64{1, 0, -5} {
		_, err := curve.Evaluate(n, DefaultFloor)
		var iie InvalidInputError
		if !errors.As(err, &iie) {
			t.Fatalf("Evaluate(%v): expected InvalidInputError, got %v", n, err)
		}
	}
}
