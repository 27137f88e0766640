package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/render"
)

// assembleStage renders the finished document set to disk.
type assembleStage struct {
	logger *log.Logger
}

func (s *assembleStage) Name() string { return "assemble" }
func (s *assembleStage) Requires() []Key {
	return []Key{KeyProjectName, KeyAbstractions, KeyRelationships, KeyChapterOrder, KeyOverview, KeyChapters}
}
func (s *assembleStage) Provides() []Key { return []Key{KeyManifest} }
func (s *assembleStage) Policy() Policy  { return runOnce }

func (s *assembleStage) Run(ctx context.Context, rc *Context) error {
	manifest, err := render.Write(render.Input{
		ProjectName:   rc.ProjectName,
		Source:        rc.Source,
		OutputRoot:    rc.OutputDir,
		Overview:      rc.Overview,
		Abstractions:  rc.Abstractions,
		Relationships: rc.Relationships,
		ChapterOrder:  rc.ChapterOrder,
		Chapters:      rc.Chapters,
	})
	if err != nil {
		return err
	}
	rc.Manifest = manifest
	s.logger.Info("documentation assembled", "dir", manifest.Dir, "documents", len(manifest.Documents))
	return nil
}
