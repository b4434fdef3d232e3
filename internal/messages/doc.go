// SPDX-License-Identifier: MPL-2.0

// Package messages carries severity-leveled diagnostics from the annotation engine
// to the user. A Sink receives messages; LogSink renders them through a
// charmbracelet/log logger and Recorder keeps them in memory for summaries and tests.
package messages
