// Package merge reconciles a rendering definition against an image's
// current server-side settings, producing the state to commit.
package merge

import (
	"fmt"

	"github.com/ome/omero-cli-render/internal/render"
)

// Options tune how the definition is reconciled.
type Options struct {
	// DisableUnspecified deactivates channels the definition does not
	// mention. Without it unmentioned channels are left untouched.
	DisableUnspecified bool
	// IgnoreErrors downgrades default-plane dimension mismatches from
	// errors to warnings, leaving the plane unchanged.
	IgnoreErrors bool
}

// Warning records a non-fatal finding during the merge. The merge still
// produces a committable state.
type Warning struct {
	Kind    WarningKind
	Channel int
	Detail  string
}

type WarningKind string

const (
	// WarnChannelOutOfRange flags definition channels whose index is not
	// a physical channel of the target image. They are skipped.
	WarnChannelOutOfRange WarningKind = "channel_out_of_range"
	// WarnPlaneOutOfRange flags ignored default-plane mismatches.
	WarnPlaneOutOfRange WarningKind = "plane_out_of_range"
)

func (w Warning) String() string {
	return w.Detail
}

// Result is the outcome of one merge: the state to commit plus any
// non-fatal warnings.
type Result struct {
	State    *render.CurrentState
	Warnings []Warning
}

// Merge computes the rendering state to commit for one image.
//
// The reconciliation is deliberately asymmetric. A channel the definition
// mentions is updated attribute by attribute, inheriting unspecified
// attributes from the current state, and is re-activated unless the
// definition disables it explicitly. A channel the definition omits is
// either deactivated (DisableUnspecified) or left entirely alone. This lets
// one document express "show exactly these channels" while still allowing
// partial edits.
//
// The fetched state is not modified; the committable copy is returned.
func Merge(spec *render.Spec, current *render.CurrentState, opts Options) (*Result, error) {
	next := current.Clone()
	result := &Result{State: next}

	if opts.DisableUnspecified {
		for idx, ch := range next.Channels {
			if _, ok := spec.Channel(idx); ok {
				continue
			}
			ch.Active = false
			next.Channels[idx] = ch
		}
	}

	for _, chspec := range spec.Channels {
		if chspec.Index >= current.ChannelCount || chspec.Index < 0 {
			result.Warnings = append(result.Warnings, Warning{
				Kind:    WarnChannelOutOfRange,
				Channel: chspec.Index,
				Detail: fmt.Sprintf("channel index %d out of range: image has %d channels",
					chspec.Index, current.ChannelCount),
			})
			continue
		}
		ch := next.Channels[chspec.Index]
		applyChannel(&ch, chspec, spec.Version)
		next.Channels[chspec.Index] = ch
	}

	if err := applyDefaultPlanes(spec, next, opts, result); err != nil {
		return nil, err
	}

	if spec.Greyscale != nil {
		next.Greyscale = *spec.Greyscale
	}
	return result, nil
}

func applyChannel(ch *render.ChannelState, spec render.ChannelSpec, version render.Version) {
	// Specifying a channel activates it unless it is explicitly disabled.
	if spec.Active != nil {
		ch.Active = *spec.Active
	} else {
		ch.Active = true
	}
	if spec.Color != "" {
		ch.Color = spec.Color
	}
	if spec.Label != "" {
		ch.Label = spec.Label
	}
	if spec.HasWindow(version) {
		ch.Start, ch.End = spec.Window(version)
	}
}

func applyDefaultPlanes(spec *render.Spec, next *render.CurrentState, opts Options, result *Result) error {
	type plane struct {
		name  string
		value *int
		size  int
		dest  *int
	}
	for _, p := range []plane{
		{"Z", spec.DefaultZ, next.SizeZ, &next.DefaultZ},
		{"T", spec.DefaultT, next.SizeT, &next.DefaultT},
	} {
		if p.value == nil {
			continue
		}
		if *p.value > p.size {
			detail := fmt.Sprintf("inconsistent default %s plane: expected to set %d but the image dimension is %d",
				p.name, *p.value, p.size)
			if !opts.IgnoreErrors {
				return fmt.Errorf("%s", detail)
			}
			result.Warnings = append(result.Warnings, Warning{
				Kind:   WarnPlaneOutOfRange,
				Detail: detail + "; ignoring",
			})
			continue
		}
		// Documents use one-based planes, the server zero-based.
		*p.dest = *p.value - 1
	}
	return nil
}
