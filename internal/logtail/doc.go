// Package logtail reads the tail of fontshelf's log file and parses its records
// for the diagnostics pane.
//
// # Reading
//
// Read keeps the last maxLines lines in a ring while scanning the file once,
// so memory stays bounded by maxLines however large the log grows. Lines come
// back oldest first.
//
//	lines, err := logtail.Read(cfg.LogFile, 2000)
//	if err != nil {
//		slog.Warn("read log failed", "error", err)
//	}
//	entries := logtail.ParseLines(lines, slog.LevelInfo)
//
// # Parsing
//
// The application logs with slog's text handler, so every record is a run of
// key=value pairs:
//
//	time=2026-10-18T09:30:00.000+02:00 level=WARN msg="persistence degraded" op=append error="disk full"
//
// Parse recovers time, level, message and the remaining attributes. Quoted
// values are unquoted with Go string syntax, which is what the handler emits.
// Anything else (a panic trace, a stray print) is kept verbatim with Parsed
// false and level INFO so it still shows up.
//
// # Errors
//
// A missing file reads as empty. Other failures are wrapped and returned.
// Parse never fails.
package logtail
