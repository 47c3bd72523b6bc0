// Package logging provides the slog handler used by buildship.
//
// A [Handler] starts out buffering records, because the log level and output
// format are only known once command-line flags have been parsed. After the
// caller configures it with SetLevel, SetFormatter, and SetStream, Flush
// writes the buffered records that pass the level and switches the handler
// to writing directly.
//
// [PrettyFormatter] renders one line per record with a coloured level label.
// In verbose mode it also prints the timestamp and the handler's group path.
//
// Example usage:
//
//	h := logging.NewHandler()
//	slog.SetDefault(slog.New(h))
//
//	// ... parse flags ...
//
//	h.SetLevel(slog.LevelDebug)
//	h.SetFormatter(logging.NewPrettyFormatter(true))
//	h.SetStream(os.Stderr)
//	h.Flush()
package logging
