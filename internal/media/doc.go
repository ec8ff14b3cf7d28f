// Package media holds the shared data model for remux jobs: tracks and
// their edit state, external files with scopes and overrides, and the
// session-wide muxing settings.
package media
