// Package githubcli wraps the GitHub CLI with typed operations for the
// report pipeline: open pull-request listing, check-run creation, and the
// gist list/create/update calls backing result archiving.
package githubcli
