// Package main hosts the specmix CLI entrypoint and command graph.
//
// The Cobra-based command tree imports raw measurement files into the
// end-member and mixed-spectrum libraries, previews raw files, runs WLS and
// STO unmixing against a selection of end-members, and manages the run
// journal. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on presentation.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
