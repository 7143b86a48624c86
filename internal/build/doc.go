// Package build runs the site build pipeline: configure the registry, load
// content, render Markdown, resolve collections, execute layouts, apply
// output transforms, write pages and copy passthrough files.
//
// All execution paths (CLI build, preview rebuilds, tests) route through
// Builder.Build. The deployment environment comes from the configuration and
// is fixed for the lifetime of a Builder.
package build
