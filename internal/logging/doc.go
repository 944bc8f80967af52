// Package logging builds slog loggers for Legenda with console and JSON
// output formats. The console handler writes compact single-line records and
// colors level labels when attached to a terminal.
package logging
