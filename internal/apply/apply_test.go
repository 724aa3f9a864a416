package apply_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ome/omero-cli-render/internal/apply"
	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/render"
	"github.com/ome/omero-cli-render/internal/testsupport"
)

func newSpec(channels ...render.ChannelSpec) *render.Spec {
	return &render.Spec{Version: render.V2, Channels: channels}
}

func TestRunCommitsAllImages(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	for id := int64(1); id <= 3; id++ {
		gw.AddImage(testsupport.NewState(id, 2))
	}
	spec := newSpec(render.ChannelSpec{Index: 0, Color: "FF0000"})

	engine := apply.NewEngine(gw, nil)
	report := engine.Run(context.Background(), spec, []int64{1, 2, 3}, apply.Options{})

	if !report.OK() {
		t.Fatalf("expected full success: %+v", report.Results)
	}
	if gw.OpenHandles != 0 {
		t.Fatalf("rendering handles leaked: %d", gw.OpenHandles)
	}
	if !reflect.DeepEqual(gw.Committed, []int64{1, 2, 3}) {
		t.Fatalf("commits out of order: %v", gw.Committed)
	}
	for id := int64(1); id <= 3; id++ {
		if gw.State(id).Channels[0].Color != "FF0000" {
			t.Fatalf("image %d not updated", id)
		}
	}
}

func TestRunPartialFailure(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	for id := int64(1); id <= 3; id++ {
		gw.AddImage(testsupport.NewState(id, 2))
	}
	gw.FailCommit[2] = errors.New("stale version")
	spec := newSpec(render.ChannelSpec{Index: 0, Color: "FF0000"})

	engine := apply.NewEngine(gw, nil)
	report := engine.Run(context.Background(), spec, []int64{1, 2, 3}, apply.Options{})

	if report.OK() {
		t.Fatal("report should not be OK")
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	if report.Results[0].State != apply.StateCommitted || report.Results[2].State != apply.StateCommitted {
		t.Fatalf("surrounding images should commit: %+v", report.Results)
	}
	if report.Results[1].State != apply.StateFailed {
		t.Fatalf("image 2 should fail: %+v", report.Results[1])
	}
	if !errors.Is(report.Results[1].Err, omero.ErrCommit) {
		t.Fatalf("failure should carry the commit error: %v", report.Results[1].Err)
	}

	// Committed images keep the merge, never rolled back.
	if gw.State(1).Channels[0].Color != "FF0000" || gw.State(3).Channels[0].Color != "FF0000" {
		t.Fatal("committed images lost their settings")
	}
	if gw.State(2).Channels[0].Color == "FF0000" {
		t.Fatal("failed image must keep its previous settings")
	}
	if gw.OpenHandles != 0 {
		t.Fatalf("rendering handles leaked: %d", gw.OpenHandles)
	}

	failed := report.Failed()
	if len(failed) != 1 || failed[0].ImageID != 2 {
		t.Fatalf("unexpected failure summary: %+v", failed)
	}
}

func TestRunFetchFailureReleasesHandle(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.AddImage(testsupport.NewState(1, 2))
	gw.FailFetch[1] = errors.New("connection reset")

	engine := apply.NewEngine(gw, nil)
	report := engine.Run(context.Background(), newSpec(render.ChannelSpec{Index: 0}), []int64{1}, apply.Options{})

	if report.OK() {
		t.Fatal("report should not be OK")
	}
	if !errors.Is(report.Results[0].Err, omero.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", report.Results[0].Err)
	}
	if gw.OpenHandles != 0 {
		t.Fatalf("handle not released after fetch failure: %d", gw.OpenHandles)
	}
}

func TestRunIdempotent(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.AddImage(testsupport.NewState(1, 3))
	spec := newSpec(
		render.ChannelSpec{Index: 0, Color: "FF0000"},
		render.ChannelSpec{Index: 2, Color: "0000FF"},
	)
	engine := apply.NewEngine(gw, nil)
	opts := apply.Options{DisableUnspecified: true}

	if report := engine.Run(context.Background(), spec, []int64{1}, opts); !report.OK() {
		t.Fatalf("first run failed: %+v", report.Results)
	}
	first := gw.State(1).Clone()

	if report := engine.Run(context.Background(), spec, []int64{1}, opts); !report.OK() {
		t.Fatalf("second run failed: %+v", report.Results)
	}
	if !reflect.DeepEqual(first, gw.State(1)) {
		t.Fatalf("apply is not idempotent:\nfirst  %+v\nsecond %+v", first, gw.State(1))
	}
}

func TestRunRecordsOutOfRangeWarning(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.AddImage(testsupport.NewState(1, 3))
	spec := newSpec(
		render.ChannelSpec{Index: 0, Color: "FF0000"},
		render.ChannelSpec{Index: 5, Color: "00FF00"},
	)

	engine := apply.NewEngine(gw, nil)
	report := engine.Run(context.Background(), spec, []int64{1}, apply.Options{})

	if !report.OK() {
		t.Fatalf("out-of-range channels must not fail the apply: %+v", report.Results)
	}
	if len(report.Results[0].Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", report.Results[0].Warnings)
	}
}

func TestRunRenamesChannelsOnCommittedImages(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.AddImage(testsupport.NewState(1, 2))
	gw.AddImage(testsupport.NewState(2, 2))
	gw.FailCommit[2] = errors.New("permission denied")
	spec := newSpec(render.ChannelSpec{Index: 0, Label: "DAPI"})

	engine := apply.NewEngine(gw, nil)
	engine.Run(context.Background(), spec, []int64{1, 2}, apply.Options{})

	if !reflect.DeepEqual(gw.RenamedImages, []int64{1}) {
		t.Fatalf("renames should target committed images only: %v", gw.RenamedImages)
	}
	if gw.RenamedNames[0] != "DAPI" {
		t.Fatalf("unexpected rename set: %v", gw.RenamedNames)
	}
	if gw.State(1).Channels[0].Label != "DAPI" {
		t.Fatal("label not applied")
	}
}

func TestRunCancelledContext(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.AddImage(testsupport.NewState(1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := apply.NewEngine(gw, nil)
	report := engine.Run(ctx, newSpec(render.ChannelSpec{Index: 0}), []int64{1}, apply.Options{})

	if report.OK() {
		t.Fatal("cancelled run must not report success")
	}
	if gw.OpenHandles != 0 {
		t.Fatalf("handles leaked on cancellation: %d", gw.OpenHandles)
	}
}
