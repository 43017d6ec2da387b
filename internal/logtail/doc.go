// Package logtail reads the end of the hudsync log and highlights it for the
// terminal UI.
//
// # Overview
//
// The UI shows the last few hundred lines of its own log next to the HUD
// state. The log can grow without bound during a soak run, so Read only ever
// looks at a fixed-size window at the end of the file.
//
// # Reading Log Files
//
// Read seeks to size-maxBytes, reads the window, and drops the fragment
// before the first newline when the window did not start at the beginning
// of the file. The remaining lines go through a ring buffer of maxLines
// entries so only the newest lines are kept:
//
//	lines, err := logtail.Read(cfg.LogPath, 400, 0)
//	if err != nil {
//		logger.Warn("read log", zap.Error(err))
//	}
//
// A window with no newline at all yields no lines. A missing file is not an
// error: Read returns nil, nil so the UI can start before the first write.
//
// # Colorization
//
// ColorizeLine understands zap's console encoding, which separates columns
// with tabs:
//
//	2026-01-01T12:00:00.000Z	INFO	durable	document saved	{"bytes": 42}
//
// The timestamp and fields are muted, the level is bold in its palette
// color and the logger name gets its own color. Lines that do not parse
// (JSON logs, stack traces) are returned unchanged.
package logtail
