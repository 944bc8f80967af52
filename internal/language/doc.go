// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-2 tags for stream metadata,
// display names for translation prompts, the supported-language list) are
// consolidated here to avoid duplication across the subtitle, caption, and
// translation packages.
package language
