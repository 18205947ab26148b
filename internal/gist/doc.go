// Package gist archives raw Lighthouse report files as secret gists so
// notifications can link the Lighthouse viewer at a stable revision.
// Archive names are deterministic per repository and URL, and repeated
// runs update the existing gist instead of creating duplicates.
package gist
