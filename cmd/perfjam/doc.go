// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the perfjam CLI commands. NewRootCommand builds the command
// tree around an App, the composition root holding the configuration provider, the
// symbol resolver factory and the output streams.
package cmd
