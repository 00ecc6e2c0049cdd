// Package log provides structured protocol event logging for the
// listener library.
//
// The core emits an Event for every bind call, accept record and
// lifecycle transition. Applications choose where events go by
// supplying a Logger implementation: NoopLogger discards, SlogAdapter
// bridges to log/slog for console output, FileLogger writes a compact
// CBOR event stream that Reader can load back for offline inspection,
// and MultiLogger fans out to several sinks at once.
//
// Logging never influences protocol behavior; encoding errors in sinks
// are swallowed.
package log
