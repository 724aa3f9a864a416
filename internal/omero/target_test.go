package omero_test

import (
	"testing"

	"github.com/ome/omero-cli-render/internal/omero"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in   string
		want omero.Target
	}{
		{"Image:123", omero.Target{Kind: omero.KindImage, ID: 123}},
		{"image:123", omero.Target{Kind: omero.KindImage, ID: 123}},
		{"DATASET:5", omero.Target{Kind: omero.KindDataset, ID: 5}},
		{"Project:2", omero.Target{Kind: omero.KindProject, ID: 2}},
		{"Plate:9", omero.Target{Kind: omero.KindPlate, ID: 9}},
		{"Screen:1", omero.Target{Kind: omero.KindScreen, ID: 1}},
		{"42", omero.Target{Kind: omero.KindImage, ID: 42}},
		{"  Image:7 ", omero.Target{Kind: omero.KindImage, ID: 7}},
	}
	for _, tc := range cases {
		got, err := omero.ParseTarget(tc.in)
		if err != nil {
			t.Fatalf("ParseTarget(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTarget(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseTargetInvalid(t *testing.T) {
	for _, in := range []string{"", "Well:3", "Image:", "Image:abc", "Image:0", "Image:-4"} {
		if _, err := omero.ParseTarget(in); err == nil {
			t.Fatalf("ParseTarget(%q) should fail", in)
		}
	}
}

func TestTargetString(t *testing.T) {
	target := omero.Target{Kind: omero.KindDataset, ID: 12}
	if target.String() != "Dataset:12" {
		t.Fatalf("unexpected string: %q", target.String())
	}
	if !target.IsContainer() {
		t.Fatal("dataset is a container")
	}
	if (omero.Target{Kind: omero.KindImage, ID: 1}).IsContainer() {
		t.Fatal("image is not a container")
	}
}
