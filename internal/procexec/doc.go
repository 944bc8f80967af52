// Package procexec runs external executables with piped stdout/stderr
// capture, an overall deadline, and a primary/fallback attempt list. A spawn
// failure of the primary advances to the fallback with identical arguments;
// every other failure mode is terminal for the invocation.
//
// Prefer this package over ad-hoc exec.Command usage when invoking the
// speech-to-text or encoder binaries.
package procexec
