package pipeline

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/analyzer"
	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/reason"
)

// structureStage runs the deterministic structural analysis and asks
// the model for the architectural reading of it. The analysis itself is
// computed once and kept across retries; only the model call repeats.
type structureStage struct {
	svc    reason.Service
	logger *log.Logger
}

func (s *structureStage) Name() string    { return "analyze-structure" }
func (s *structureStage) Requires() []Key { return []Key{KeyProjectName, KeyFiles} }
func (s *structureStage) Provides() []Key { return []Key{KeyStructure, KeyInsights} }
func (s *structureStage) Policy() Policy  { return lightRetry }

func (s *structureStage) Run(ctx context.Context, rc *Context) error {
	if rc.Structure == nil {
		rc.Structure = analyzer.Analyze(rc.Files)
		s.logger.Info("structure analyzed",
			"entry_points", len(rc.Structure.EntryPoints),
			"core_modules", len(rc.Structure.CoreModules),
			"max_depth", rc.Structure.MaxDepth)
	}

	resp, err := s.svc.Complete(ctx, structurePrompt(rc.ProjectName, rc.Structure))
	if err != nil {
		return err
	}
	var ins docset.ArchInsights
	if err := reason.DecodeBlock(resp, &ins); err != nil {
		return err
	}
	if ins.Architecture.Type == "" && ins.Architecture.Description == "" {
		return errors.New("insights missing architecture")
	}
	rc.Insights = &ins
	return nil
}
