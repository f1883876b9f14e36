// Package main hosts the postergeist CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the posting run itself plus
// configuration scaffolding and history inspection. It centralizes
// configuration resolution, instance locking, and logger setup so
// subcommands stay declarative while the pipeline lives in internal
// packages.
package main
