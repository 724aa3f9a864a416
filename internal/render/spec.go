package render

import "sort"

// Version identifies the rendering-definition document format.
type Version int

const (
	// VersionUnset means no version has been resolved yet.
	VersionUnset Version = 0
	// V1 documents express intensity windows as min/max.
	V1 Version = 1
	// V2 documents express intensity windows as start/end and may carry
	// default Z/T planes.
	V2 Version = 2
)

// SpecVersion is the current version emitted for rendering definitions.
const SpecVersion = V2

// ChannelSpec holds the requested settings for a single channel. Pointer
// fields distinguish "leave the server value alone" from an explicit value.
type ChannelSpec struct {
	// Index is the zero-based channel position on the image.
	Index int
	// Active toggles the channel. When nil on a specified channel the
	// merge step activates it (specifying a channel turns it on unless
	// it is explicitly disabled).
	Active *bool
	// Color is an HTML RGB(A) triplet or lookup-table name.
	Color string
	// Label renames the channel; cosmetic only.
	Label string
	// Start/End bound the intensity window (V2). Either both or neither
	// are set.
	Start *float64
	End   *float64
	// Min/Max bound the intensity window in V1 documents. Either both or
	// neither are set.
	Min *float64
	Max *float64
}

// HasWindow reports whether the channel carries an intensity window under
// the given version.
func (c ChannelSpec) HasWindow(v Version) bool {
	if v == V1 {
		return c.Min != nil && c.Max != nil
	}
	return c.Start != nil && c.End != nil
}

// Window returns the effective intensity window bounds for the version. In
// V1 documents min/max take the place of start/end.
func (c ChannelSpec) Window(v Version) (start, end float64) {
	if v == V1 {
		return *c.Min, *c.Max
	}
	return *c.Start, *c.End
}

// Spec is a full rendering definition for one image. It is built fresh per
// invocation, either from a parsed document or from server-side settings,
// and never outlives the command that created it.
type Spec struct {
	Version  Version
	Channels []ChannelSpec
	// DefaultZ and DefaultT are one-based plane indices (V2 only). Nil
	// leaves the server value unchanged.
	DefaultZ *int
	DefaultT *int
	// Greyscale switches the rendering model when set.
	Greyscale *bool
}

// Channel returns the spec for the given channel index, if present.
func (s *Spec) Channel(index int) (ChannelSpec, bool) {
	for _, ch := range s.Channels {
		if ch.Index == index {
			return ch, true
		}
	}
	return ChannelSpec{}, false
}

// Labels collects the channel renames requested by the definition, keyed by
// channel index. Labels apply even to channels being disabled.
func (s *Spec) Labels() map[int]string {
	labels := make(map[int]string)
	for _, ch := range s.Channels {
		if ch.Label != "" {
			labels[ch.Index] = ch.Label
		}
	}
	return labels
}

// sortChannels normalizes channel ordering to ascending index.
func (s *Spec) sortChannels() {
	sort.Slice(s.Channels, func(i, j int) bool {
		return s.Channels[i].Index < s.Channels[j].Index
	})
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
