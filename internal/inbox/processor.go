// Package inbox reconciles items flagged pendingAIProcessing against the
// extraction service. Each pending item gets at most one automatic
// extraction attempt; failures leave it as an uncategorized note rather
// than looping.
package inbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Extractor is the slice of the extraction service the processor needs.
type Extractor interface {
	ExtractItems(ctx context.Context, text string) (model.ExtractionResult, error)
}

// Result summarizes one batch run.
type Result struct {
	ProcessedCount int `json:"processedCount"`
	ExtractedCount int `json:"extractedCount"`
}

// Processor runs pending inbox items through extraction. Batch runs are
// mutually exclusive process-wide: a call arriving while another run is
// in flight returns a zero Result instead of queuing.
type Processor struct {
	store     store.Store
	extractor Extractor
	log       zerolog.Logger

	running  atomic.Bool
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewProcessor constructs a Processor.
func NewProcessor(s store.Store, ex Extractor, log zerolog.Logger) *Processor {
	return &Processor{
		store:     s,
		extractor: ex,
		log:       log,
		inFlight:  make(map[string]struct{}),
	}
}

// ProcessPendingItems processes every item with pendingAIProcessing set
// and status inbox. There is no batch atomicity: a failure mid-batch
// leaves earlier items resolved, which is safe because each item's
// resolution is independent.
func (p *Processor) ProcessPendingItems(ctx context.Context) (Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		p.log.Debug().Msg("inbox run already in flight, skipping")
		return Result{}, nil
	}
	defer p.running.Store(false)

	pending, err := p.store.Items().ListPending(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list pending items: %w", err)
	}

	var res Result
	for _, it := range pending {
		if !p.claim(it.ID) {
			continue
		}
		extracted, err := p.processItem(ctx, it)
		p.release(it.ID)
		if err != nil {
			p.log.Error().Err(err).Str("item_id", it.ID).Msg("inbox item processing failed")
			continue
		}
		res.ProcessedCount++
		res.ExtractedCount += len(extracted)
	}

	p.log.Info().
		Int("processed", res.ProcessedCount).
		Int("extracted", res.ExtractedCount).
		Msg("inbox run complete")
	return res, nil
}

// ProcessItemByID extracts one specific item, regardless of any batch
// run. An item that is not pending is returned as-is.
func (p *Processor) ProcessItemByID(ctx context.Context, id string) ([]*model.Item, error) {
	it, err := p.store.Items().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.PendingAIProcessing {
		return []*model.Item{it}, nil
	}
	if !p.claim(id) {
		return nil, fmt.Errorf("item %s is already being processed", id)
	}
	defer p.release(id)
	return p.processItem(ctx, it)
}

// PendingCount reports how many inbox items still await processing.
func (p *Processor) PendingCount(ctx context.Context) (int, error) {
	pending, err := p.store.Items().ListPending(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// IsRunning reports whether a batch run is in flight.
func (p *Processor) IsRunning() bool { return p.running.Load() }

// processItem resolves a single pending item. One extracted item
// rewrites the record in place; several replace it with new records.
// On extraction error the pending flag is cleared first so the item is
// never retried automatically.
func (p *Processor) processItem(ctx context.Context, original *model.Item) ([]*model.Item, error) {
	res, err := p.extractor.ExtractItems(ctx, original.RawInput)
	if err != nil {
		p.clearPending(ctx, original.ID)
		return nil, fmt.Errorf("extract %s: %w", original.ID, err)
	}

	switch len(res.Items) {
	case 0:
		// Nothing extractable; the item keeps its capture-time defaults.
		p.clearPending(ctx, original.ID)
		return nil, nil
	case 1:
		ex := res.Items[0]
		pending := false
		synced := false
		entities := ex.Entities
		upd, err := p.store.Items().Update(ctx, original.ID, model.ItemUpdate{
			Category:            &ex.Category,
			Title:               &ex.Title,
			Tags:                &ex.Tags,
			Urgency:             &ex.Urgency,
			Entities:            &entities,
			PendingAIProcessing: &pending,
			Synced:              &synced,
		})
		if err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", original.ID, err)
		}
		return []*model.Item{upd}, nil
	}

	// Destructive replace: N new items, created timestamps copied from
	// the original to preserve temporal ordering, then the blob deleted.
	newItems := make([]*model.Item, 0, len(res.Items))
	for _, ex := range res.Items {
		created, err := p.store.Items().Create(ctx, &model.Item{
			RawInput:  ex.RawText,
			Category:  ex.Category,
			Title:     ex.Title,
			Tags:      ex.Tags,
			Entities:  ex.Entities,
			Urgency:   ex.Urgency,
			Status:    model.StatusInbox,
			CreatedAt: original.CreatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("create extracted item: %w", err)
		}
		newItems = append(newItems, created)
	}
	if err := p.store.Items().Delete(ctx, original.ID); err != nil {
		return nil, fmt.Errorf("delete original %s: %w", original.ID, err)
	}
	p.log.Info().Str("item_id", original.ID).Int("extracted", len(newItems)).Msg("split capture into new items")
	return newItems, nil
}

func (p *Processor) clearPending(ctx context.Context, id string) {
	pending := false
	if _, err := p.store.Items().Update(ctx, id, model.ItemUpdate{PendingAIProcessing: &pending}); err != nil {
		p.log.Error().Err(err).Str("item_id", id).Msg("clear pending flag failed")
	}
}

func (p *Processor) claim(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Processor) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, id)
}
