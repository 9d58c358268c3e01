// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package logging builds the process logger.

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

The text format uses tinted console output; json emits one object per line.
Everything else in the server logs through log/slog with key/value pairs.
*/
package logging
