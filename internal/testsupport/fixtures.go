package testsupport

import "github.com/ome/omero-cli-render/internal/render"

// NewState builds an image state with the given channel count. Every
// channel starts active with a grey color and a 0..255 window.
func NewState(imageID int64, channels int) *render.CurrentState {
	state := &render.CurrentState{
		ImageID:      imageID,
		Name:         "test-image",
		ChannelCount: channels,
		SizeZ:        10,
		SizeT:        5,
		Channels:     make(map[int]render.ChannelState, channels),
	}
	for i := 0; i < channels; i++ {
		state.Channels[i] = render.ChannelState{
			Active: true,
			Color:  "CCCCCC",
			Start:  0,
			End:    255,
		}
	}
	return state
}
