// Package enhance wraps the description-enhancement collaborator. The rest of
// the system treats it as an opaque text transform; the default implementation
// is a local template so the service has no hard dependency on an external
// model endpoint.
package enhance

import (
	"context"
	"strings"
)

// Enhancer rewrites a project description. Hints carry the required skills
// when the caller has them; implementations may ignore them.
type Enhancer interface {
	Enhance(ctx context.Context, text string, hints []string) (string, error)
}

// Static is the built-in enhancer.
type Static struct{}

func (Static) Enhance(ctx context.Context, text string, hints []string) (string, error) {
	if len(hints) > 0 {
		return "Enhanced: " + text + "\n\nThis project requires expertise in " + strings.Join(hints, ", ") + ".", nil
	}
	return "Enhanced: " + text + "\n\nThis project requires a skilled professional with attention to detail. " +
		"The ideal candidate will have experience with similar projects and a portfolio demonstrating relevant work.", nil
}
