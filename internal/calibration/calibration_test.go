package calibration

import (
	"math"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCompareAllExact(t *testing.T) {
	names := []string{"pH", "hardness"}
	expected := map[string]string{"pH": "7.2", "hardness": "120"}
	extracted := map[string]*string{"pH": strPtr("7.2"), "hardness": strPtr("120")}

	r := Compare(names, expected, extracted)

	if r.ExactMatches != 2 || r.MeanDistance != 0 {
		t.Fatalf("report %+v", r)
	}
	if len(r.Fields) != 2 || r.Fields[0].Field != "pH" {
		t.Fatalf("fields %+v", r.Fields)
	}
}

func TestCompareMissedField(t *testing.T) {
	names := []string{"pH", "turbidity"}
	expected := map[string]string{"pH": "7.2", "turbidity": "3.5"}
	extracted := map[string]*string{"pH": strPtr("7.2"), "turbidity": nil}

	r := Compare(names, expected, extracted)

	if r.ExactMatches != 1 {
		t.Fatalf("exact matches %d", r.ExactMatches)
	}
	// pH contributes 0, turbidity contributes 3/3.
	if math.Abs(r.MeanDistance-0.5) > 1e-9 {
		t.Fatalf("mean distance %f", r.MeanDistance)
	}
	if r.Fields[1].Distance != 3 || r.Fields[1].Exact {
		t.Fatalf("missed field scored %+v", r.Fields[1])
	}
}

func TestCompareNearMiss(t *testing.T) {
	names := []string{"solids"}
	r := Compare(names,
		map[string]string{"solids": "20500"},
		map[string]*string{"solids": strPtr("2050")})

	if r.ExactMatches != 0 || r.Fields[0].Distance != 1 {
		t.Fatalf("report %+v", r)
	}
}

func TestCompareSkipsUnannotated(t *testing.T) {
	names := []string{"pH", "sulfate"}
	r := Compare(names,
		map[string]string{"pH": "7"},
		map[string]*string{"pH": strPtr("7"), "sulfate": strPtr("330")})

	if len(r.Fields) != 1 || r.Fields[0].Field != "pH" {
		t.Fatalf("fields %+v", r.Fields)
	}
}
