// Package omero abstracts the image-management service the render commands
// talk to: target addressing, the rendering-service capability interfaces,
// and an HTTP JSON client implementation.
package omero

import (
	"context"
	"errors"
	"fmt"

	"github.com/ome/omero-cli-render/internal/render"
)

var (
	// ErrFetch tags failures while reading current settings. Per-image,
	// non-fatal to a collection apply.
	ErrFetch = errors.New("fetch rendering settings")
	// ErrCommit tags failures while saving merged settings. Per-image,
	// non-fatal to a collection apply.
	ErrCommit = errors.New("commit rendering settings")
	// ErrNotFound marks a target object that does not exist on the server.
	ErrNotFound = errors.New("no such object")
)

// RenderingService is a scoped per-image handle through which current
// settings are read and new settings committed. Close must be called on
// every exit path; implementations make it safe to call once regardless of
// how far the fetch/commit sequence got.
type RenderingService interface {
	Fetch(ctx context.Context) (*render.CurrentState, error)
	Commit(ctx context.Context, state *render.CurrentState) error
	Close() error
}

// PixelsCheck is the outcome of a pixel-data availability probe.
type PixelsCheck struct {
	// Status is ok, miss, fill, or fail.
	Status   string
	PixelsID int64
	Error    string
}

// Gateway is the boundary to the remote image service. One implementation
// exists per service client; the apply and info paths depend only on this
// interface so tests can substitute a fake.
type Gateway interface {
	// OpenRendering acquires a rendering-service handle for one image.
	OpenRendering(ctx context.Context, imageID int64) (RenderingService, error)
	// ListImages expands a target to the IDs of the images under it, in
	// the server's enumeration order. An image target yields itself.
	ListImages(ctx context.Context, target Target) ([]int64, error)
	// SetChannelNames renames channels across a set of images. Keys are
	// zero-based channel indices.
	SetChannelNames(ctx context.Context, imageIDs []int64, names map[int]string) error
	// CopySettings applies the source image's rendering settings to all
	// given images, returning a per-image error map for partial failure.
	CopySettings(ctx context.Context, fromImage int64, toImages []int64) (map[int64]error, error)
	// CheckPixels probes whether the image's pixel data is readable,
	// optionally forcing creation of missing data.
	CheckPixels(ctx context.Context, imageID int64, force bool) (PixelsCheck, error)
}

// FetchError wraps a read failure so the apply engine can classify it.
func FetchError(imageID int64, err error) error {
	return fmt.Errorf("%w: image %d: %w", ErrFetch, imageID, err)
}

// CommitError wraps a write failure so the apply engine can classify it.
func CommitError(imageID int64, err error) error {
	return fmt.Errorf("%w: image %d: %w", ErrCommit, imageID, err)
}
