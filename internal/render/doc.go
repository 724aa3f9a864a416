// Package render models rendering definitions for multi-channel microscopy
// images: which channels are active, their colors and intensity windows, and
// the default Z/T plane.
//
// A definition is parsed from a YAML or JSON document (two format versions
// are supported and auto-detected), validated structurally, and later merged
// against the server-side settings of each target image. The package also
// provides the inverse direction, extracting a definition from fetched
// settings for the info command.
package render
