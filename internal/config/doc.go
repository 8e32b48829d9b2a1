// Package config loads keyseq startup settings.
//
// Settings come from three places, later ones winning: built-in defaults,
// an optional TOML file, and KEYSEQ_* environment variables. Command-line
// flags are applied on top by the caller. A missing file is not an error.
//
// Example file:
//
//	[channels]
//	token_capacity = 8
//	snapshot_capacity = 8
//
//	[logging]
//	level = "debug"
//	file = "/tmp/keyseq.log"
//
//	[printer]
//	position = "bottom-right"
//	color = "#ffaf00"
//	quit = "q"
//
//	[hook]
//	script = "~/.config/keyseq/hook.lua"
package config
