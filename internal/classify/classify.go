// Package classify turns one raw transcript into one categorized item.
// Two strategies implement the same contract: an online one backed by the
// categorization gateway and a total offline heuristic. Neither falls back
// to the other on its own; fallback policy belongs to callers.
package classify

import (
	"context"

	"github.com/mindstash/mindstash/internal/model"
)

// Classifier is the shared classification contract.
type Classifier interface {
	Categorize(ctx context.Context, text string) (model.Categorization, error)
}

// Gateway is the slice of the AI client the online classifier needs.
type Gateway interface {
	Categorize(ctx context.Context, text string) (model.Categorization, error)
}

// Online classifies through the categorization gateway. Errors, including
// malformed gateway output, propagate to the caller untouched.
type Online struct {
	gw Gateway
}

// NewOnline wraps a gateway client.
func NewOnline(gw Gateway) *Online { return &Online{gw: gw} }

func (o *Online) Categorize(ctx context.Context, text string) (model.Categorization, error) {
	return o.gw.Categorize(ctx, text)
}
