// Package format is the producer side of the text package parse reads: it
// renders posts in the tagged layout, for example when a stored post is
// sent back to be rewritten, and describes the JSON shape expected from
// structured-output requests.
package format
