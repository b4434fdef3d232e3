// SPDX-License-Identifier: MPL-2.0

// Package config handles perfjam configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/perfjam/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/perfjam/config.cue on macOS and
// %APPDATA%\perfjam\config.cue on Windows), falling back to ./config.cue. Files are
// validated against the embedded config_schema.cue before being merged over defaults.
package config
