// Package notify builds the channel-agnostic notification payload from
// grouped audit results and renders it for each outbound channel. The
// payload is built once and fanned out read-only; channel renderers only
// differ in presentation.
package notify
