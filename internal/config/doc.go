// Package config loads fontshelf's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fontshelf/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. FONTSHELF_* environment variables override whatever the file said
//
// # Default Values
//
//   - Config file: ~/.config/fontshelf/config.toml
//   - Preferences: prefs.toml next to the config file
//   - Database: ~/.local/share/fontshelf/fontshelf.db
//   - Log file: ~/.local/share/fontshelf/fontshelf.log
//   - Document: local-fonts-viewer
//   - Font directories: the operating system's usual locations
//
// # TOML Format
//
//	font_dirs = ["~/fonts", "/usr/share/fonts"]
//	db_path = "~/.local/share/fontshelf/fontshelf.db"
//	document = "local-fonts-viewer"
//	log_level = "info"          # debug, info, warn, error
//	log_file = "~/.local/share/fontshelf/fontshelf.log"
//	parse_workers = 0           # 0 = one per CPU
//	compact_after = 256         # update log rows before compaction
//	pull_interval = "2s"        # how often other processes' writes are merged
//
// All fields are optional. Tilde expansion is performed on every path.
//
// # Environment
//
// Overrides are read with github.com/caarlos0/env. FONTSHELF_FONT_DIRS takes a
// list separated by the OS path list separator.
//
// # Error Handling
//
// Missing config files are NOT an error. Load fails on unreadable files, bad
// TOML, unparseable environment values, unknown log levels, negative worker
// counts and bad durations.
package config
