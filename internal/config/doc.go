// Package config loads and merges sawmill configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SAWMILL_PLUGIN, SAWMILL_FORMAT, SAWMILL_FAIL_ON, SAWMILL_COLOR)
//  3. Config file (--config, else <repo root>/sawmill.toml, else the user config dir)
//  4. Built-in defaults
//
// The file is TOML:
//
//	[general]
//	default_plugin = "vivado"
//
//	[output]
//	color = true
//	format = "text"
//
//	[suppress]
//	patterns = ["Parameter .* not used"]
//	message_ids = ["Synth 8-7080"]
//
//	[check]
//	fail_on = "critical_warning"
//	waivers = "waivers.toml"
//	filter_mode = "and"
//
// Use [Load] to obtain a merged [Config], [Save] to write one, and
// [SetField] to update a single key.
package config
