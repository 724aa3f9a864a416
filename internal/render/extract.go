package render

import (
	"fmt"
	"strings"
)

// Extract converts fetched server-side settings into a rendering definition
// in the current document version. It is pure: the state must already have
// been fetched. Channels come out in ascending index order with one-based
// document indices and planes.
func Extract(state *CurrentState) *Spec {
	spec := &Spec{
		Version:   SpecVersion,
		Channels:  make([]ChannelSpec, 0, len(state.Channels)),
		DefaultZ:  intPtr(state.DefaultZ + 1),
		DefaultT:  intPtr(state.DefaultT + 1),
		Greyscale: boolPtr(state.Greyscale),
	}
	for _, idx := range state.ChannelIndices() {
		ch := state.Channels[idx]
		spec.Channels = append(spec.Channels, ChannelSpec{
			Index:  idx,
			Active: boolPtr(ch.Active),
			Color:  ch.Color,
			Label:  ch.Label,
			Start:  floatPtr(ch.Start),
			End:    floatPtr(ch.End),
		})
	}
	return spec
}

// FormatPlain renders the state the way the classic info output does: one
// header line with model and default planes, then one line per channel.
func FormatPlain(state *CurrentState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rdefv%d: model=%s, z=%d, t=%d\n",
		SpecVersion, state.Model(), state.DefaultZ+1, state.DefaultT+1)
	for _, idx := range state.ChannelIndices() {
		ch := state.Channels[idx]
		fmt.Fprintf(&sb, "ch%d: active=%t,color=%s,label=%s,start=%v,end=%v\n",
			idx, ch.Active, ch.Color, ch.Label, ch.Start, ch.End)
	}
	return sb.String()
}
