package browser

import "context"

// Navigator is the rendering/navigation surface the extraction pipeline runs
// against: load a URL, wait for a named element, hand back the parsed page.
// The production implementation drives a headless browser; tests substitute a
// double that returns canned HTML.
type Navigator interface {
	// Open navigates to url, waits for waitSelector to appear, and returns
	// the loaded document
	Open(ctx context.Context, url, waitSelector string) (*Document, error)

	// Close releases the navigator's resources, waiting up to the context
	// deadline for in-flight page loads to finish
	Close(ctx context.Context) error
}
