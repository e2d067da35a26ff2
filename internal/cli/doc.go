// Package cli wires together the Cobra command tree for the sawmill binary.
//
// It defines the root command and all subcommands (show, check, waivers,
// plugins, config, version), binds flags, reads configuration, runs the
// parse, filter and check pipeline, and returns deterministic exit codes for
// CI gating: 0 pass, 1 check failed, 2 usage or configuration error,
// 4 runtime error.
package cli
