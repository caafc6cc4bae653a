// Package cli builds the coursesync command-line interface. It wires the Cobra
// command hierarchy to the layered configuration loader, the structured
// logger and the lesson branch synchronization service.
package cli
