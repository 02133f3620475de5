package main

import (
	"strings"

	"golang.org/x/net/html"
)

// parsePreview reparses annotated output so a frontend can flatten it into
// display segments.
func parsePreview(annotated string) (*html.Node, error) {
	return html.Parse(strings.NewReader(annotated))
}
