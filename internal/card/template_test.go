package card

import (
	"image"
	"testing"
)

func TestDefaultTemplateHasTenRegions(t *testing.T) {
	tpl := Default()

	if len(tpl.Regions) != 10 {
		t.Fatalf("expected 10 regions, got %d", len(tpl.Regions))
	}
	if err := tpl.Validate(); err != nil {
		t.Fatalf("default template failed validation: %v", err)
	}
}

func TestDefaultTemplateRegionsWithinBounds(t *testing.T) {
	tpl := Default()
	frame := image.Rect(0, 0, tpl.Width, tpl.Height)

	for _, r := range tpl.Regions {
		if !r.Rect().In(frame) {
			t.Errorf("region %q extends outside the %dx%d frame: %v",
				r.Name, tpl.Width, tpl.Height, r.Rect())
		}
	}
}

func TestDefaultTemplateRegionsDoNotOverlap(t *testing.T) {
	tpl := Default()

	for i, a := range tpl.Regions {
		for _, b := range tpl.Regions[i+1:] {
			if a.Rect().Overlaps(b.Rect()) {
				t.Errorf("regions %q and %q overlap", a.Name, b.Name)
			}
		}
	}
}

func TestDefaultTemplateTargets(t *testing.T) {
	tpl := Default()

	want := [4]Target{
		{40, 40},
		{1040, 40},
		{1040, 1200},
		{40, 1200},
	}
	if tpl.Targets != want {
		t.Errorf("unexpected fiducial targets: got %v, want %v", tpl.Targets, want)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	tpl := Default()
	regions := make([]RegionSpec, len(tpl.Regions))
	copy(regions, tpl.Regions)
	regions[1] = regions[0]
	regions[1].Name = "other"
	tpl.Regions = regions

	if err := tpl.Validate(); err == nil {
		t.Error("expected validation error for overlapping regions")
	}
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	tpl := Default()
	regions := make([]RegionSpec, len(tpl.Regions))
	copy(regions, tpl.Regions)
	regions[0].X = tpl.Width - 10
	tpl.Regions = regions

	if err := tpl.Validate(); err == nil {
		t.Error("expected validation error for out-of-bounds region")
	}
}

func TestFieldNamesOrder(t *testing.T) {
	tpl := Default()
	names := tpl.FieldNames()

	if names[0] != "pH" {
		t.Errorf("expected first field pH, got %s", names[0])
	}
	if names[len(names)-1] != "free_chlorine_residual" {
		t.Errorf("expected last field free_chlorine_residual, got %s", names[len(names)-1])
	}
}
