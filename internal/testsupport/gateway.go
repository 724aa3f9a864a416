// Package testsupport provides a scriptable in-memory image-service gateway
// and state fixtures shared by command and engine tests.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/render"
)

// FakeGateway implements omero.Gateway against in-memory state. Failures
// are scripted per image ID.
type FakeGateway struct {
	mu sync.Mutex

	// States holds the per-image rendering state, keyed by image ID.
	States map[int64]*render.CurrentState
	// Containers maps container targets to their image IDs.
	Containers map[omero.Target][]int64

	// FailOpen, FailFetch, and FailCommit script per-image failures.
	FailOpen   map[int64]error
	FailFetch  map[int64]error
	FailCommit map[int64]error

	// OpenHandles counts rendering handles that have not been closed.
	OpenHandles int
	// Committed records image IDs in commit order.
	Committed []int64
	// RenamedNames records the last SetChannelNames call.
	RenamedImages []int64
	RenamedNames  map[int]string
	// CopyCalls records CopySettings invocations as (from, targets).
	CopyCalls []CopyCall
	// CopyFailures scripts per-target copy failures.
	CopyFailures map[int64]error
	// PixelChecks scripts CheckPixels results per image.
	PixelChecks map[int64]omero.PixelsCheck
}

// CopyCall records one CopySettings invocation.
type CopyCall struct {
	From    int64
	Targets []int64
}

// NewFakeGateway builds an empty fake gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		States:       make(map[int64]*render.CurrentState),
		Containers:   make(map[omero.Target][]int64),
		FailOpen:     make(map[int64]error),
		FailFetch:    make(map[int64]error),
		FailCommit:   make(map[int64]error),
		CopyFailures: make(map[int64]error),
		PixelChecks:  make(map[int64]omero.PixelsCheck),
	}
}

// AddImage registers an image with the given state.
func (g *FakeGateway) AddImage(state *render.CurrentState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.States[state.ImageID] = state
}

// State returns the current state for the image.
func (g *FakeGateway) State(imageID int64) *render.CurrentState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.States[imageID]
}

func (g *FakeGateway) OpenRendering(ctx context.Context, imageID int64) (omero.RenderingService, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.FailOpen[imageID]; err != nil {
		return nil, err
	}
	if _, ok := g.States[imageID]; !ok {
		return nil, fmt.Errorf("%w: Image:%d", omero.ErrNotFound, imageID)
	}
	g.OpenHandles++
	return &fakeRendering{gateway: g, imageID: imageID}, nil
}

func (g *FakeGateway) ListImages(ctx context.Context, target omero.Target) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !target.IsContainer() {
		if _, ok := g.States[target.ID]; !ok {
			return nil, fmt.Errorf("%w: %s", omero.ErrNotFound, target)
		}
		return []int64{target.ID}, nil
	}
	images, ok := g.Containers[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", omero.ErrNotFound, target)
	}
	return append([]int64(nil), images...), nil
}

func (g *FakeGateway) SetChannelNames(ctx context.Context, imageIDs []int64, names map[int]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RenamedImages = append([]int64(nil), imageIDs...)
	g.RenamedNames = names
	for _, id := range imageIDs {
		state, ok := g.States[id]
		if !ok {
			continue
		}
		for idx, name := range names {
			if ch, ok := state.Channels[idx]; ok {
				ch.Label = name
				state.Channels[idx] = ch
			}
		}
	}
	return nil
}

func (g *FakeGateway) CopySettings(ctx context.Context, fromImage int64, toImages []int64) (map[int64]error, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.States[fromImage]; !ok {
		return nil, fmt.Errorf("%w: Image:%d", omero.ErrNotFound, fromImage)
	}
	g.CopyCalls = append(g.CopyCalls, CopyCall{From: fromImage, Targets: append([]int64(nil), toImages...)})
	failed := make(map[int64]error)
	for _, id := range toImages {
		if err := g.CopyFailures[id]; err != nil {
			failed[id] = err
		}
	}
	return failed, nil
}

func (g *FakeGateway) CheckPixels(ctx context.Context, imageID int64, force bool) (omero.PixelsCheck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if check, ok := g.PixelChecks[imageID]; ok {
		return check, nil
	}
	if _, ok := g.States[imageID]; !ok {
		return omero.PixelsCheck{}, fmt.Errorf("%w: Image:%d", omero.ErrNotFound, imageID)
	}
	return omero.PixelsCheck{Status: "ok", PixelsID: imageID}, nil
}

type fakeRendering struct {
	gateway *FakeGateway
	imageID int64
	closed  bool
}

func (r *fakeRendering) Fetch(ctx context.Context) (*render.CurrentState, error) {
	r.gateway.mu.Lock()
	defer r.gateway.mu.Unlock()
	if err := r.gateway.FailFetch[r.imageID]; err != nil {
		return nil, omero.FetchError(r.imageID, err)
	}
	return r.gateway.States[r.imageID].Clone(), nil
}

func (r *fakeRendering) Commit(ctx context.Context, state *render.CurrentState) error {
	r.gateway.mu.Lock()
	defer r.gateway.mu.Unlock()
	if err := r.gateway.FailCommit[r.imageID]; err != nil {
		return omero.CommitError(r.imageID, err)
	}
	r.gateway.States[r.imageID] = state.Clone()
	r.gateway.Committed = append(r.gateway.Committed, r.imageID)
	return nil
}

func (r *fakeRendering) Close() error {
	r.gateway.mu.Lock()
	defer r.gateway.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.gateway.OpenHandles--
	return nil
}
