// Package main hosts the omero-render CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into calls
// against the image service: inspecting rendering settings, applying a
// rendering definition across an image or container, copying settings
// between images, and probing pixel-data availability. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: the definition model, merge rules, and apply
// orchestration live in the internal packages and are surfaced here through
// dedicated commands and flags.
package main
