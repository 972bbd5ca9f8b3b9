// Package main hosts the tvshelf CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into workflow
// runs: parsing filenames, previewing destinations, relocating files, and
// inspecting the move history and local catalog. It centralizes
// configuration resolution, logger construction and store access so
// subcommands can focus on presentation.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
