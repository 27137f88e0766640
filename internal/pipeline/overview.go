package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/reason"
)

// overviewStage writes the project-wide overview document intended for
// inclusion in agent system prompts.
type overviewStage struct {
	svc    reason.Service
	logger *log.Logger
}

func (s *overviewStage) Name() string { return "write-overview" }
func (s *overviewStage) Requires() []Key {
	return []Key{KeyProjectName, KeyStructure, KeyAbstractions, KeyRelationships}
}
func (s *overviewStage) Provides() []Key { return []Key{KeyOverview} }
func (s *overviewStage) Policy() Policy  { return lightRetry }

func (s *overviewStage) Run(ctx context.Context, rc *Context) error {
	prompt := overviewPrompt(rc.ProjectName, structureDigest(rc.Structure, rc.Insights), rc.Abstractions, rc.Relationships, rc.Files)
	resp, err := s.svc.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) == "" {
		return errors.New("empty overview")
	}
	rc.Overview = resp
	s.logger.Info("overview written", "bytes", len(resp))
	return nil
}
