// Package utils provides small helpers shared by the parser and the command
// line tool: JSON rendering that never fails, rune-safe truncation for log
// previews of model output, and an elapsed-time [Timer].
package utils
