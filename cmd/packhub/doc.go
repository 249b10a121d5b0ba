// Package main hosts the packhub CLI entrypoint and command graph.
//
// The Cobra-based command tree decodes training pack metadata, validates
// plugin upload bodies, maintains the decoded pack cache, and scaffolds
// configuration. It centralizes configuration resolution, cache wiring and
// structured logging setup so subcommands can focus on presentation.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
