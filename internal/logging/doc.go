// Package logging configures the application's slog loggers.
//
// It provides a console handler that prints compact component-prefixed
// key=value lines for interactive runs, a JSON handler for machine
// consumption, and attribute helpers so call sites stay terse. Components
// obtain scoped loggers through NewComponentLogger.
package logging
