package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lorekeep/lore/internal/reason"
)

// itemPolicy is the per-chapter retry budget. The stage itself runs
// once; retrying per chapter keeps one flaky response from restarting
// the whole fan-out.
var itemPolicy = Policy{Attempts: 5, Delay: 20 * time.Second}

// chaptersStage writes one chapter per component, in parallel, bounded
// by the worker limit. Results land in reading-order slots so worker
// scheduling never changes the output.
type chaptersStage struct {
	svc     reason.Service
	workers int
	logger  *log.Logger
	sleep   sleepFunc
}

func newChaptersStage(svc reason.Service, workers int, logger *log.Logger) *chaptersStage {
	if workers < 1 {
		workers = 1
	}
	return &chaptersStage{svc: svc, workers: workers, logger: logger, sleep: sleepCtx}
}

func (s *chaptersStage) Name() string { return "write-chapters" }
func (s *chaptersStage) Requires() []Key {
	return []Key{KeyFiles, KeyAbstractions, KeyRelationships, KeyChapterOrder}
}
func (s *chaptersStage) Provides() []Key { return []Key{KeyChapters} }
func (s *chaptersStage) Policy() Policy  { return runOnce }

func (s *chaptersStage) Run(ctx context.Context, rc *Context) error {
	order := rc.ChapterOrder
	chapters := make([]string, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for pos, absIndex := range order {
		g.Go(func() error {
			a := rc.Abstractions[absIndex]
			prompt := chapterPrompt(a, rc.Abstractions, rc.Relationships, rc.Files, absIndex, pos, order)

			var text string
			err := retry(gctx, itemPolicy, s.sleep, func(attempt int, err error) {
				s.logger.Warn("chapter attempt failed",
					"component", a.Name,
					"attempt", attempt,
					"of", itemPolicy.Attempts,
					"err", err)
			}, func(actx context.Context) error {
				resp, err := s.svc.Complete(actx, prompt)
				if err != nil {
					return err
				}
				if strings.TrimSpace(resp) == "" {
					return errors.New("empty chapter")
				}
				text = resp
				return nil
			})
			if err != nil {
				return fmt.Errorf("chapter %q: %w", a.Name, err)
			}

			chapters[pos] = text
			s.logger.Info("chapter written", "position", pos+1, "of", len(order), "component", a.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rc.Chapters = chapters
	return nil
}
