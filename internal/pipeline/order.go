package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/reason"
)

// orderStage decides the chapter reading order. A response that is not
// a permutation of the component indices falls back to identity order
// rather than silently dropping chapters.
type orderStage struct {
	svc    reason.Service
	logger *log.Logger
}

func (s *orderStage) Name() string    { return "order-chapters" }
func (s *orderStage) Requires() []Key { return []Key{KeyAbstractions, KeyRelationships} }
func (s *orderStage) Provides() []Key { return []Key{KeyChapterOrder} }
func (s *orderStage) Policy() Policy  { return heavyRetry }

func (s *orderStage) Run(ctx context.Context, rc *Context) error {
	resp, err := s.svc.Complete(ctx, orderPrompt(rc.Abstractions, rc.Relationships))
	if err != nil {
		return err
	}

	var out struct {
		ChapterOrder []int  `yaml:"chapter_order"`
		Reasoning    string `yaml:"reasoning"`
	}
	if err := reason.DecodeBlock(resp, &out); err != nil {
		return err
	}

	n := len(rc.Abstractions)
	if !docset.IsPermutation(out.ChapterOrder, n) {
		s.logger.Info("chapter order is not a permutation, using identity order", "got", out.ChapterOrder, "components", n)
		rc.ChapterOrder = docset.IdentityOrder(n)
		return nil
	}
	rc.ChapterOrder = out.ChapterOrder
	s.logger.Info("chapters ordered", "count", n, "reasoning", out.Reasoning)
	return nil
}
