package render

import "sort"

// ChannelState is the server-side rendering state of one channel.
type ChannelState struct {
	Active bool
	Color  string
	Label  string
	Start  float64
	End    float64
}

// CurrentState is the snapshot of an image's rendering settings as read
// from the image service. It is fetched per target image, mutated in place
// by the merge step, committed, and discarded. DefaultZ/DefaultT are
// zero-based server plane indices.
type CurrentState struct {
	ImageID      int64
	Name         string
	ChannelCount int
	SizeZ        int
	SizeT        int
	Channels     map[int]ChannelState
	DefaultZ     int
	DefaultT     int
	Greyscale    bool
}

// Clone returns a deep copy so the merge step can build the state to commit
// without touching the fetched snapshot.
func (s *CurrentState) Clone() *CurrentState {
	out := *s
	out.Channels = make(map[int]ChannelState, len(s.Channels))
	for idx, ch := range s.Channels {
		out.Channels[idx] = ch
	}
	return &out
}

// ChannelIndices returns the state's channel indices in ascending order.
func (s *CurrentState) ChannelIndices() []int {
	indices := make([]int, 0, len(s.Channels))
	for idx := range s.Channels {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// Model names the rendering model in the form the classic output uses.
func (s *CurrentState) Model() string {
	if s.Greyscale {
		return "greyscale"
	}
	return "color"
}
