// Package config loads hudsync settings from a TOML file and the environment.
//
// # Overview
//
// hudsync runs with sensible defaults and no config file. The file only
// needs the keys that differ from the defaults; environment variables then
// override whatever the file says, which is convenient for soak runs and
// containers.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/hudsync/config.toml
//  3. HUDSYNC_* environment variables
//  4. Path expansion (~ and relative paths) and validation
//
// A missing file is not an error. A file that exists but cannot be read or
// parsed is.
//
// # Keys
//
//	storage_dir         ~/.local/share/hudsync   HUDSYNC_STORAGE_DIR
//	max_document_bytes  262144                   HUDSYNC_MAX_DOCUMENT_BYTES
//	urgent_interval     100ms                    HUDSYNC_URGENT_INTERVAL
//	idle_interval       500ms                    HUDSYNC_IDLE_INTERVAL
//	heartbeat_interval  3s                       HUDSYNC_HEARTBEAT_INTERVAL
//	tick_interval       50ms                     HUDSYNC_TICK_INTERVAL
//	level_up_recheck    300ms                    HUDSYNC_LEVEL_UP_RECHECK
//	pause_recheck       1s                       HUDSYNC_PAUSE_RECHECK
//	log_path            <storage_dir>/hudsync.log HUDSYNC_LOG_PATH
//	log_level           info                     HUDSYNC_LOG_LEVEL
//	log_format          console                  HUDSYNC_LOG_FORMAT
//	metrics_addr        "" (disabled)            HUDSYNC_METRICS_ADDR
//	theme               Dracula                  HUDSYNC_THEME
//
// Durations use Go syntax ("250ms", "2s"). Every duration and
// max_document_bytes must be positive. log_level is one of debug, info,
// warn or error; log_format is console or json.
//
// # Example
//
//	storage_dir = "~/games/hud"
//	idle_interval = "750ms"
//	metrics_addr = "127.0.0.1:9464"
//
// # Live Reload
//
// Watch follows the file with fsnotify and calls back with each new valid
// Config. Only the throttle intervals are applied to a running process;
// storage and logging settings take effect on the next start.
package config
