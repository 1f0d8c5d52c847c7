// Package parse recovers structured posts from the raw text a language model
// returns when asked for several short articles at once. Models are asked to
// separate articles with a divider token and to tag each field with a
// $$$NAME$$$ sigil, but the output routinely arrives with code fences, math
// delimiters, emphasis markers, localized labels, missing tags or merged
// articles. The package applies a layered recovery strategy (noise
// normalization, splitting with a title-tag fallback, tag extraction with an
// alias-label fallback, body healing, and documented defaults) and never
// returns an error: the worst outcome is an empty slice.
//
// The main entry point is [Posts], which uses a [Parser] with default
// settings. Build a custom one with [New] and functional options such as
// [WithMinChunkLength], [WithAliases] or [WithObserver]; use
// [Parser.ParseResult] when field provenance matters.
package parse
