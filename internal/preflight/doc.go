// Package preflight evaluates the external requirements of a catscan
// install: the classifier binary, model artifact, sample images, and disk
// headroom for logs and run history. Daemon startup and the HTTP status
// endpoint both use these checks so the requirements list lives in one place.
package preflight
