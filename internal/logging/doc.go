// Package logging configures slog for the storytree CLI.
//
// Console logs go to stderr so that `storytree build` can stream the hash to
// stdout. With --debug, debug-level logs are also appended to a rotating
// file under the user's state directory.
package logging
