// Package upload materializes incoming byte streams into per-request scratch
// files. Files are uniquely named, size-verified after write, and released
// unconditionally at request end.
package upload
