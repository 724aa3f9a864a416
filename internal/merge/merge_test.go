package merge_test

import (
	"strings"
	"testing"

	"github.com/ome/omero-cli-render/internal/merge"
	"github.com/ome/omero-cli-render/internal/render"
	"github.com/ome/omero-cli-render/internal/testsupport"
)

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func specWithChannels(channels ...render.ChannelSpec) *render.Spec {
	return &render.Spec{Version: render.V2, Channels: channels}
}

func TestMergeAsymmetry(t *testing.T) {
	// Channels 0 and 1 on, 2 off; the definition mentions only channel 0.
	current := testsupport.NewState(1, 3)
	ch := current.Channels[2]
	ch.Active = false
	current.Channels[2] = ch

	spec := specWithChannels(render.ChannelSpec{Index: 0})

	result, err := merge.Merge(spec, current, merge.Options{DisableUnspecified: true})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	next := result.State
	if !next.Channels[0].Active {
		t.Fatal("specified channel 0 should be active")
	}
	if next.Channels[1].Active {
		t.Fatal("unspecified channel 1 should be disabled")
	}
	if next.Channels[2].Active {
		t.Fatal("unspecified channel 2 should stay disabled")
	}
	// Disabling must not clobber the other settings.
	if next.Channels[1].Color != "CCCCCC" || next.Channels[1].End != 255 {
		t.Fatalf("disabled channel lost its settings: %+v", next.Channels[1])
	}
}

func TestMergeWithoutDisableLeavesUnspecifiedAlone(t *testing.T) {
	current := testsupport.NewState(1, 2)
	spec := specWithChannels(render.ChannelSpec{Index: 0, Color: "FF0000"})

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if got := result.State.Channels[1]; got != current.Channels[1] {
		t.Fatalf("unspecified channel changed: %+v", got)
	}
}

func TestMergeAutoReactivation(t *testing.T) {
	current := testsupport.NewState(1, 2)
	ch := current.Channels[1]
	ch.Active = false
	current.Channels[1] = ch

	// Channel 1 gets a new color and no active field.
	spec := specWithChannels(render.ChannelSpec{Index: 1, Color: "00FF00"})

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	got := result.State.Channels[1]
	if !got.Active {
		t.Fatal("specifying a channel should re-activate it")
	}
	if got.Color != "00FF00" {
		t.Fatalf("color not applied: %+v", got)
	}
}

func TestMergeExplicitDisableWins(t *testing.T) {
	current := testsupport.NewState(1, 1)
	spec := specWithChannels(render.ChannelSpec{Index: 0, Active: boolPtr(false), Color: "FF0000"})

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.State.Channels[0].Active {
		t.Fatal("explicit active=false must win over auto re-activation")
	}
}

func TestMergePartialAttributesKeepCurrent(t *testing.T) {
	current := testsupport.NewState(1, 1)
	ch := current.Channels[0]
	ch.Color = "FF0000"
	ch.Label = "Red"
	ch.Start = 10
	ch.End = 90
	current.Channels[0] = ch

	// Only a window change; color and label must survive.
	spec := specWithChannels(render.ChannelSpec{Index: 0, Start: floatPtr(20), End: floatPtr(80)})

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	got := result.State.Channels[0]
	if got.Color != "FF0000" || got.Label != "Red" {
		t.Fatalf("unspecified attributes changed: %+v", got)
	}
	if got.Start != 20 || got.End != 80 {
		t.Fatalf("window not applied: %+v", got)
	}
}

func TestMergeV1WindowsMapToStartEnd(t *testing.T) {
	current := testsupport.NewState(1, 1)
	spec := &render.Spec{
		Version: render.V1,
		Channels: []render.ChannelSpec{
			{Index: 0, Min: floatPtr(3), Max: floatPtr(42)},
		},
	}

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	got := result.State.Channels[0]
	if got.Start != 3 || got.End != 42 {
		t.Fatalf("v1 min/max should become the window: %+v", got)
	}
}

func TestMergeOutOfRangeChannelSkipped(t *testing.T) {
	current := testsupport.NewState(1, 3)
	spec := specWithChannels(
		render.ChannelSpec{Index: 0, Color: "FF0000"},
		render.ChannelSpec{Index: 5, Color: "00FF00"},
	)

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %+v", result.Warnings)
	}
	warning := result.Warnings[0]
	if warning.Kind != merge.WarnChannelOutOfRange || warning.Channel != 5 {
		t.Fatalf("unexpected warning: %+v", warning)
	}
	if result.State.Channels[0].Color != "FF0000" {
		t.Fatal("in-range channel should still be applied")
	}
	if _, ok := result.State.Channels[5]; ok {
		t.Fatal("out-of-range channel must not be created")
	}
}

func TestMergeDefaultPlanes(t *testing.T) {
	current := testsupport.NewState(1, 1) // SizeZ=10, SizeT=5
	spec := specWithChannels(render.ChannelSpec{Index: 0})
	spec.DefaultZ = intPtr(10)
	spec.DefaultT = intPtr(2)

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.State.DefaultZ != 9 || result.State.DefaultT != 1 {
		t.Fatalf("planes should be converted to zero-based: z=%d t=%d",
			result.State.DefaultZ, result.State.DefaultT)
	}
}

func TestMergeDefaultPlaneOutOfRange(t *testing.T) {
	current := testsupport.NewState(1, 1)
	spec := specWithChannels(render.ChannelSpec{Index: 0})
	spec.DefaultZ = intPtr(11) // image has SizeZ=10

	if _, err := merge.Merge(spec, current, merge.Options{}); err == nil {
		t.Fatal("expected error for out-of-range default plane")
	}

	result, err := merge.Merge(spec, current, merge.Options{IgnoreErrors: true})
	if err != nil {
		t.Fatalf("Merge with IgnoreErrors returned error: %v", err)
	}
	if result.State.DefaultZ != current.DefaultZ {
		t.Fatal("ignored plane must stay unchanged")
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != merge.WarnPlaneOutOfRange {
		t.Fatalf("expected one plane warning, got %+v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0].Detail, "image dimension") {
		t.Fatalf("unexpected warning detail: %q", result.Warnings[0].Detail)
	}
}

func TestMergeGreyscale(t *testing.T) {
	current := testsupport.NewState(1, 1)
	spec := specWithChannels(render.ChannelSpec{Index: 0})

	result, err := merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.State.Greyscale {
		t.Fatal("absent greyscale must leave the model unchanged")
	}

	spec.Greyscale = boolPtr(true)
	result, err = merge.Merge(spec, current, merge.Options{})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if !result.State.Greyscale {
		t.Fatal("greyscale not applied")
	}
}

func TestMergeDoesNotMutateFetchedState(t *testing.T) {
	current := testsupport.NewState(1, 2)
	spec := specWithChannels(render.ChannelSpec{Index: 0, Color: "FF0000"})

	if _, err := merge.Merge(spec, current, merge.Options{DisableUnspecified: true}); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if current.Channels[0].Color != "CCCCCC" || !current.Channels[1].Active {
		t.Fatalf("fetched state was mutated: %+v", current.Channels)
	}
}
