package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/reason"
)

// abstractionsStage reads the selected core files and identifies the
// technical components everything downstream documents.
type abstractionsStage struct {
	svc    reason.Service
	logger *log.Logger
}

func (s *abstractionsStage) Name() string { return "identify-abstractions" }
func (s *abstractionsStage) Requires() []Key {
	return []Key{KeyProjectName, KeyFiles, KeyCoreFiles, KeyStructure}
}
func (s *abstractionsStage) Provides() []Key { return []Key{KeyAbstractions} }
func (s *abstractionsStage) Policy() Policy  { return heavyRetry }

func (s *abstractionsStage) Run(ctx context.Context, rc *Context) error {
	prompt := abstractionsPrompt(rc.ProjectName, structureDigest(rc.Structure, rc.Insights), coreContent(rc.CoreFiles, rc.Files))
	resp, err := s.svc.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	var out struct {
		Abstractions []docset.Abstraction `yaml:"abstractions"`
	}
	if err := reason.DecodeBlock(resp, &out); err != nil {
		return err
	}
	if len(out.Abstractions) == 0 {
		return errors.New("no abstractions identified")
	}
	for i, a := range out.Abstractions {
		if a.Name == "" {
			return fmt.Errorf("abstraction %d has no name", i)
		}
		for _, idx := range a.FileIndices {
			if idx < 0 || idx >= len(rc.Files) {
				return fmt.Errorf("abstraction %q references file %d of %d", a.Name, idx, len(rc.Files))
			}
		}
	}

	rc.Abstractions = out.Abstractions
	s.logger.Info("abstractions identified", "count", len(out.Abstractions))
	return nil
}
