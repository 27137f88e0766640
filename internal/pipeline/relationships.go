package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/reason"
)

// relationshipsStage maps how the identified components interact:
// summary, architecture narrative, typed component edges, data flows,
// and interface contracts.
type relationshipsStage struct {
	svc    reason.Service
	logger *log.Logger
}

func (s *relationshipsStage) Name() string { return "analyze-relationships" }
func (s *relationshipsStage) Requires() []Key {
	return []Key{KeyProjectName, KeyAbstractions, KeyStructure}
}
func (s *relationshipsStage) Provides() []Key { return []Key{KeyRelationships} }
func (s *relationshipsStage) Policy() Policy  { return heavyRetry }

func (s *relationshipsStage) Run(ctx context.Context, rc *Context) error {
	prompt := relationshipsPrompt(rc.ProjectName, rc.Abstractions, structureDigest(rc.Structure, rc.Insights))
	resp, err := s.svc.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	var rels docset.RelationshipSet
	if err := reason.DecodeBlock(resp, &rels); err != nil {
		return err
	}
	if rels.Summary == "" {
		return errors.New("relationships missing summary")
	}
	if rels.ArchitectureOverview == "" {
		return errors.New("relationships missing architecture_overview")
	}
	n := len(rc.Abstractions)
	for i, rel := range rels.Relationships {
		if rel.FromIndex < 0 || rel.FromIndex >= n || rel.ToIndex < 0 || rel.ToIndex >= n {
			return fmt.Errorf("relationship %d references component outside 0..%d", i, n-1)
		}
	}

	rc.Relationships = &rels
	s.logger.Info("relationships analyzed",
		"edges", len(rels.Relationships),
		"flows", len(rels.DataFlows),
		"interfaces", len(rels.Interfaces))
	return nil
}
