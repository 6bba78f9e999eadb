package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dawnhollow/memquest/internal/domain"
)

// Store is the slice of the record store ingestion needs.
type Store interface {
	ListQuestNames(ctx context.Context) ([]string, error)
	AppendQuests(ctx context.Context, quests []domain.QuestUnit) error
}

// Report summarizes one ingestion batch.
type Report struct {
	Created   int      `json:"created"`
	Names     []string `json:"names"`
	Truncated int      `json:"truncated"`
	Skipped   int      `json:"skipped"`
}

// Ingestor runs the upload pipeline: split, classify, name, dedupe, persist.
type Ingestor struct {
	store  Store
	maxLen int
}

// NewIngestor returns an Ingestor that caps quest content at maxLen runes.
func NewIngestor(store Store, maxLen int) *Ingestor {
	return &Ingestor{store: store, maxLen: maxLen}
}

// IngestText splits decoded text into blocks and persists each as a new quest
// unit named "{prefix}-{label}", suffixing "_1", "_2", ... on collision with
// either pre-existing corpus names or names produced earlier in this batch.
// All surviving blocks are appended in one batch; if none survive,
// domain.ErrNoContent is returned and nothing is written.
func (in *Ingestor) IngestText(ctx context.Context, text, prefix, creator string) (*Report, error) {
	split := Split(text, in.maxLen)
	report := &Report{Truncated: split.Truncated, Skipped: split.Skipped}
	if len(split.Blocks) == 0 {
		return nil, domain.ErrNoContent
	}

	existing, err := in.store.ListQuestNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest names: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	now := time.Now()
	var quests []domain.QuestUnit
	for _, block := range split.Blocks {
		name := uniqueName(prefix+"-"+Classify(block), taken)
		taken[name] = true
		quests = append(quests, domain.QuestUnit{
			Name:      name,
			Content:   block,
			Creator:   creator,
			CreatedAt: now,
		})
		report.Names = append(report.Names, name)
	}

	if err := in.store.AppendQuests(ctx, quests); err != nil {
		return nil, fmt.Errorf("failed to append quests: %w", err)
	}
	report.Created = len(quests)
	slog.Info("ingested upload",
		"prefix", prefix,
		"created", report.Created,
		"truncated", report.Truncated,
	)
	return report, nil
}

// uniqueName resolves collisions deterministically by appending _1, _2, ...
// until the candidate is free.
func uniqueName(candidate string, taken map[string]bool) string {
	if !taken[candidate] {
		return candidate
	}
	for i := 1; ; i++ {
		suffixed := fmt.Sprintf("%s_%d", candidate, i)
		if !taken[suffixed] {
			return suffixed
		}
	}
}
