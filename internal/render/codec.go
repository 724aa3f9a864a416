package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Style selects the serialization format for rendering definitions.
type Style string

const (
	StyleYAML Style = "yaml"
	StyleJSON Style = "json"
)

// document mirrors the on-disk rendering definition. Channels are kept as a
// raw node because the format accepts both the classic mapping form
// (one-based channel index as key) and a positional sequence.
type document struct {
	Version   *int      `yaml:"version"`
	Channels  yaml.Node `yaml:"channels"`
	Greyscale *bool     `yaml:"greyscale"`
	Z         *int      `yaml:"z"`
	T         *int      `yaml:"t"`
	DefaultZ  *int      `yaml:"default_z"`
	DefaultT  *int      `yaml:"default_t"`
}

type channelDoc struct {
	Active *bool    `yaml:"active"`
	Color  *string  `yaml:"color"`
	Label  *string  `yaml:"label"`
	Start  *float64 `yaml:"start"`
	End    *float64 `yaml:"end"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
}

// ParseFile reads and parses a rendering definition from path. YAML and
// JSON inputs are both accepted.
func ParseFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rendering definition: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes a rendering definition document into a Spec. The returned
// spec carries the version inferred from the document content; an explicit
// CLI version flag is reconciled afterwards by ResolveVersion.
//
// Parse is the single structural gate: any error it returns wraps
// ErrMalformedSpec (or ErrVersionMismatch for undeterminable versions) and
// the caller must not touch the server.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Malformed("empty document", nil)
		}
		return nil, Malformed("decode document", err)
	}

	if doc.Channels.IsZero() {
		return nil, Malformed("no channels found", nil)
	}

	channels, err := parseChannels(&doc.Channels)
	if err != nil {
		return nil, err
	}

	spec := &Spec{Channels: channels}
	if err := parseDefaultPlanes(&doc, spec); err != nil {
		return nil, err
	}
	spec.Greyscale = doc.Greyscale

	version, err := inferVersion(&doc, spec)
	if err != nil {
		return nil, err
	}
	spec.Version = version
	spec.sortChannels()
	return spec, nil
}

func parseChannels(node *yaml.Node) ([]ChannelSpec, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return parseChannelMapping(node)
	case yaml.SequenceNode:
		return parseChannelSequence(node)
	default:
		return nil, Malformed("channels must be a mapping of index to settings or a sequence", nil)
	}
}

// parseChannelMapping handles the classic form: channel indices are
// one-based mapping keys, as written by `render info --style yaml`.
func parseChannelMapping(node *yaml.Node) ([]ChannelSpec, error) {
	channels := make([]ChannelSpec, 0, len(node.Content)/2)
	seen := make(map[int]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key, err := strconv.Atoi(keyNode.Value)
		if err != nil {
			return nil, Malformed(fmt.Sprintf("invalid channel index %q", keyNode.Value), nil)
		}
		if key < 1 {
			return nil, Malformed(fmt.Sprintf("channel index %d out of range: indices are one-based", key), nil)
		}
		index := key - 1
		if seen[index] {
			return nil, Malformed(fmt.Sprintf("duplicate channel index %d", key), nil)
		}
		seen[index] = true
		ch, err := parseChannel(valueNode, index)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// parseChannelSequence handles the positional form: the first entry
// describes channel 0, the second channel 1, and so on.
func parseChannelSequence(node *yaml.Node) ([]ChannelSpec, error) {
	channels := make([]ChannelSpec, 0, len(node.Content))
	for i, entry := range node.Content {
		ch, err := parseChannel(entry, i)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func parseChannel(node *yaml.Node, index int) (ChannelSpec, error) {
	var doc channelDoc
	if err := node.Decode(&doc); err != nil {
		return ChannelSpec{}, Malformed(fmt.Sprintf("channel %d", index+1), err)
	}

	ch := ChannelSpec{
		Index:  index,
		Active: doc.Active,
		Start:  doc.Start,
		End:    doc.End,
		Min:    doc.Min,
		Max:    doc.Max,
	}
	if doc.Color != nil {
		ch.Color = *doc.Color
	}
	if doc.Label != nil {
		ch.Label = *doc.Label
	}

	if err := validateWindow(index, "start", "end", ch.Start, ch.End); err != nil {
		return ChannelSpec{}, err
	}
	if err := validateWindow(index, "min", "max", ch.Min, ch.Max); err != nil {
		return ChannelSpec{}, err
	}
	return ch, nil
}

func validateWindow(index int, loKey, hiKey string, lo, hi *float64) error {
	if (lo == nil) != (hi == nil) {
		return Malformed(fmt.Sprintf("channel %d: %s and %s must be given together", index+1, loKey, hiKey), nil)
	}
	if lo != nil && *lo > *hi {
		return Malformed(
			fmt.Sprintf("channel %d: %s %v exceeds %s %v", index+1, loKey, *lo, hiKey, *hi),
			ErrInvalidWindowRange,
		)
	}
	return nil
}

func parseDefaultPlanes(doc *document, spec *Spec) error {
	z, err := pickPlane("z", doc.Z, doc.DefaultZ)
	if err != nil {
		return err
	}
	t, err := pickPlane("t", doc.T, doc.DefaultT)
	if err != nil {
		return err
	}
	spec.DefaultZ = z
	spec.DefaultT = t
	return nil
}

// pickPlane reconciles the short key used by the classic format (z, t) with
// the long alias (default_z, default_t). Plane indices are one-based.
func pickPlane(name string, short, long *int) (*int, error) {
	if short != nil && long != nil {
		return nil, Malformed(fmt.Sprintf("both %s and default_%s given", name, name), nil)
	}
	v := short
	if v == nil {
		v = long
	}
	if v != nil && *v < 1 {
		return nil, Malformed(fmt.Sprintf("invalid default %s plane: %d", name, *v), nil)
	}
	return v, nil
}

// Marshal serializes a well-formed spec in the requested style. Channel
// indices are written one-based, matching the documents Parse accepts.
func Marshal(spec *Spec, style Style) ([]byte, error) {
	doc := marshalDocument(spec)
	switch style {
	case StyleYAML:
		return yaml.Marshal(doc)
	case StyleJSON:
		return json.MarshalIndent(doc, "", "    ")
	default:
		return nil, fmt.Errorf("unsupported output style %q", style)
	}
}

func marshalDocument(spec *Spec) map[string]any {
	channels := make(map[int]map[string]any, len(spec.Channels))
	for _, ch := range spec.Channels {
		entry := make(map[string]any)
		if ch.Active != nil {
			entry["active"] = *ch.Active
		}
		if ch.Color != "" {
			entry["color"] = ch.Color
		}
		if ch.Label != "" {
			entry["label"] = ch.Label
		}
		if ch.Start != nil {
			entry["start"] = *ch.Start
		}
		if ch.End != nil {
			entry["end"] = *ch.End
		}
		if ch.Min != nil {
			entry["min"] = *ch.Min
		}
		if ch.Max != nil {
			entry["max"] = *ch.Max
		}
		channels[ch.Index+1] = entry
	}

	doc := map[string]any{
		"version":  int(spec.Version),
		"channels": channels,
	}
	if spec.DefaultZ != nil {
		doc["z"] = *spec.DefaultZ
	}
	if spec.DefaultT != nil {
		doc["t"] = *spec.DefaultT
	}
	if spec.Greyscale != nil {
		doc["greyscale"] = *spec.Greyscale
	}
	return doc
}
