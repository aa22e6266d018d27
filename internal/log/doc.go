// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// The SecureHandler masks database credentials before they reach the log
// output: password attributes, DSNs, and connection URLs with inline
// credentials are replaced with a redaction marker. Even in verbose mode,
// sensitive values are masked so logs can be shared without leaking
// database passwords.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("connecting",
//	    "dsn", "postgres://shop:hunter2@db:5432/shop", // masked
//	    "host", "db",                                  // kept
//	)
package log
