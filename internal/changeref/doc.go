// Package changeref resolves the change a report run describes: always a
// commit link, plus a pull request link when an open pull request's head
// matches the audited commit.
package changeref
