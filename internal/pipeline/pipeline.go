package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/reason"
	"github.com/lorekeep/lore/internal/source"
)

// Retry budgets. Deterministic stages run once; reasoning stages get a
// budget scaled to how expensive a wasted attempt is.
var (
	runOnce    = Policy{Attempts: 1}
	lightRetry = Policy{Attempts: 3, Delay: 10 * time.Second}
	heavyRetry = Policy{Attempts: 5, Delay: 20 * time.Second}
)

// NewPipeline assembles the standard documentation pipeline: fetch,
// structural analysis, core file selection, abstraction and
// relationship analysis, chapter ordering, overview and chapter
// writing, and final assembly.
func NewPipeline(provider source.Provider, svc reason.Service, workers int, logger *log.Logger) *Engine {
	stages := []Stage{
		&fetchStage{provider: provider, logger: logger},
		&structureStage{svc: svc, logger: logger},
		&coreSelectStage{svc: svc, logger: logger},
		&abstractionsStage{svc: svc, logger: logger},
		&relationshipsStage{svc: svc, logger: logger},
		&orderStage{svc: svc, logger: logger},
		&overviewStage{svc: svc, logger: logger},
		newChaptersStage(svc, workers, logger),
		&assembleStage{logger: logger},
	}
	return NewEngine(stages, logger)
}
