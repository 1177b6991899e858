// Package extract turns one raw transcript into zero or more discrete
// items. The online path delegates segmentation to the categorization
// gateway; any online failure is caught here and the offline splitter
// runs instead. This is the one boundary where online→offline fallback
// is automatic.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/model"
)

// Gateway is the slice of the AI client extraction needs.
type Gateway interface {
	ExtractItems(ctx context.Context, text string) (model.ExtractionResult, error)
}

// Service extracts discrete items from transcripts.
type Service struct {
	gw          Gateway
	offline     *classify.Offline
	maxSegments int
	log         zerolog.Logger
}

// New builds the extraction service. gw may be nil, in which case every
// call runs offline. maxSegments caps offline over-splitting; overflow
// folds into the last segment rather than being dropped.
func New(gw Gateway, offline *classify.Offline, maxSegments int, log zerolog.Logger) *Service {
	if maxSegments < 1 {
		maxSegments = 1
	}
	return &Service{gw: gw, offline: offline, maxSegments: maxSegments, log: log}
}

// ExtractItems returns at least one item for non-empty input. Online
// failures never reach the caller.
func (s *Service) ExtractItems(ctx context.Context, text string) (model.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return model.ExtractionResult{
			Items:     []model.ExtractedItem{},
			Reasoning: "input was empty; nothing to extract",
		}, nil
	}

	if s.gw != nil {
		res, err := s.gw.ExtractItems(ctx, text)
		if err == nil && len(res.Items) > 0 {
			return res, nil
		}
		if err != nil {
			s.log.Debug().Err(err).Msg("online extraction failed, falling back offline")
		}
	}

	return s.extractOffline(ctx, text)
}

// Split points: sentence punctuation plus bare spoken conjunctions.
var splitRe = regexp.MustCompile(`(?i)[.,]|\s+(?:and|also|plus|then)\s+`)

func (s *Service) extractOffline(ctx context.Context, text string) (model.ExtractionResult, error) {
	// Split(n) leaves the unsplit remainder in the last piece, which is
	// exactly the overflow-folding we want at the segment cap.
	pieces := splitRe.Split(text, s.maxSegments)
	var segments []string
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}

	if len(segments) == 0 {
		return model.ExtractionResult{
			Items:     []model.ExtractedItem{},
			Reasoning: "offline extraction found no non-empty segments",
		}, nil
	}

	split := len(segments) > 1
	items := make([]model.ExtractedItem, 0, len(segments))
	for _, seg := range segments {
		cat, err := s.offline.Categorize(ctx, seg)
		if err != nil {
			return model.ExtractionResult{}, fmt.Errorf("offline categorize segment: %w", err)
		}
		conf := cat.Confidence
		if split {
			// Compounded uncertainty: splitting and classifying are both
			// heuristic here.
			conf *= 0.7
		}
		items = append(items, model.ExtractedItem{
			Category:   cat.Category,
			Title:      cat.Title,
			Tags:       []string{},
			Urgency:    cat.Urgency,
			Confidence: conf,
			RawText:    seg,
			Entities:   cat.Entities,
		})
	}

	reasoning := "no split points found; treated as a single thought"
	if split {
		reasoning = fmt.Sprintf("offline extraction split input into %d segments", len(segments))
	}
	return model.ExtractionResult{Items: items, Reasoning: reasoning}, nil
}
