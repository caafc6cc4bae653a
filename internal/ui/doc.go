// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns git lifecycle events into concise log lines,
// and SummaryPrinter renders run summaries, branch listings and checkpoint
// status with lipgloss styles on standard output.
package ui
