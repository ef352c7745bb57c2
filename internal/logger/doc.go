// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder that only colors levels
//     when stdout is a terminal,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Every pipeline step accepts a context and extracts the logger from it, so a
// run ID and the step name travel with each record.
package logger
