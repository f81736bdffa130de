package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/ai"
	"github.com/local/scorefiler/internal/domain"
	"github.com/local/scorefiler/internal/metrics"
	"github.com/local/scorefiler/internal/naming"
	"github.com/local/scorefiler/internal/pdf"
)

// run drives one arrangement from ready_to_process to a terminal state.
// All remote calls happen outside the lock; s.inflight guarantees no
// concurrent run for the same arrangement.
func (s *Service) run(ctx context.Context, a *domain.Arrangement) error {
	started := time.Now()
	log.Info().Str("arrangement_id", a.ID).Int("files", len(a.Files)).Msg("processing arrangement")

	s.mu.Lock()
	files := make([]domain.InputFile, len(a.Files))
	copy(files, a.Files)
	s.mu.Unlock()

	// Merge only when there is more than one file; a single input is the
	// working document as-is.
	working := files[0].Data
	if len(files) > 1 {
		s.transition(ctx, a, domain.ArrangementMergingFiles, fmt.Sprintf("merging %d files", len(files)))
		inputs := make([]pdf.Input, len(files))
		for i, f := range files {
			inputs[i] = pdf.Input{Name: f.Name, Data: f.Data}
		}
		merged, err := s.deps.Docs.Merge(inputs)
		if err != nil {
			return s.fail(ctx, a, fmt.Errorf("merge failed: %w", err))
		}
		working = merged
	}

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, a, err)
	}
	s.transition(ctx, a, domain.ArrangementReadingFile, "reading working document")
	doc, err := s.deps.Docs.Load("working document", working)
	if err != nil {
		return s.fail(ctx, a, fmt.Errorf("read failed: %w", err))
	}
	log.Debug().Str("arrangement_id", a.ID).Int("pages", doc.PageCount()).Msg("working document loaded")

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, a, err)
	}
	s.transition(ctx, a, domain.ArrangementExtractingMetadata, "extracting metadata")
	folders, err := s.deps.Storage.ListSubfolders(ctx, s.opts.RootFolderID)
	if err != nil {
		return s.fail(ctx, a, fmt.Errorf("listing categories: %w", err))
	}
	allowed := make([]string, len(folders))
	for i, f := range folders {
		allowed[i] = f.Name
	}

	payload, err := s.deps.Extract.Prepare(doc.Bytes())
	if err != nil {
		return s.fail(ctx, a, fmt.Errorf("encoding document: %w", err))
	}
	md, err := s.deps.Extract.Extract(ctx, payload, allowed)
	if err != nil {
		return s.fail(ctx, a, err)
	}
	// The extractor validates its own output, but category containment and
	// a non-empty part list gate folder creation, so they are enforced here
	// regardless of where the metadata came from.
	if err := ai.Validate(md, allowed); err != nil {
		return s.fail(ctx, a, err)
	}

	s.mu.Lock()
	if t := strings.TrimSpace(md.Title); t != "" {
		a.DisplayName = t
	}
	a.Metadata = &domain.ExtractedMetadata{
		Title:     md.Title,
		Composers: append([]string(nil), md.Composers...),
		Category:  md.Category,
	}
	a.Parts = make([]*domain.Part, len(md.Parts))
	for i, d := range md.Parts {
		a.Parts[i] = &domain.Part{
			ID:            domain.PartID(a.ID, d.Label, i),
			ArrangementID: a.ID,
			Ordinal:       i,
			Descriptor: domain.PartDescriptor{
				Label:           d.Label,
				IsFullScore:     d.IsFullScore,
				StartPage:       d.StartPage,
				EndPage:         d.EndPage,
				Instrumentation: d.Instrumentation,
			},
			Status:  domain.PartPending,
			Message: "waiting",
		}
	}
	s.mu.Unlock()
	log.Info().Str("arrangement_id", a.ID).Str("title", md.Title).Str("category", md.Category).Int("parts", len(md.Parts)).Msg("metadata extracted")

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, a, err)
	}
	s.transition(ctx, a, domain.ArrangementCreatingCategoryFolder, fmt.Sprintf("resolving category folder %q", md.Category))
	categoryID, err := s.deps.Storage.FindOrCreateFolder(ctx, md.Category, s.opts.RootFolderID)
	if err != nil {
		return s.fail(ctx, a, fmt.Errorf("resolving category folder: %w", err))
	}

	s.mu.Lock()
	a.CategoryFolderID = categoryID
	name := a.DisplayName
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, a, err)
	}
	s.transition(ctx, a, domain.ArrangementCreatingArrangementFolder, fmt.Sprintf("resolving arrangement folder %q", name))
	arrFolderID, err := s.deps.Storage.FindOrCreateFolder(ctx, name, categoryID)
	if err != nil {
		return s.fail(ctx, a, fmt.Errorf("resolving arrangement folder: %w", err))
	}
	s.mu.Lock()
	a.ArrangementFolderID = arrFolderID
	parts := a.Parts
	s.mu.Unlock()

	s.transition(ctx, a, domain.ArrangementProcessingParts, fmt.Sprintf("processing %d parts", len(parts)))
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, a, err)
		}
		s.processPart(ctx, a, p, doc, name, arrFolderID)
	}

	return s.finalize(ctx, a, started)
}

// processPart runs split, name and upload for one part. Any failure is
// recorded on the part alone; siblings keep processing.
func (s *Service) processPart(ctx context.Context, a *domain.Arrangement, p *domain.Part, doc Document, displayName, folderID string) {
	s.setPart(ctx, a, p, domain.PartSplitting, fmt.Sprintf("extracting pages %d-%d", p.Descriptor.StartPage, p.Descriptor.EndPage))
	data, err := doc.ExtractRange(p.Descriptor.StartPage, p.Descriptor.EndPage)
	if err != nil {
		s.failPart(ctx, a, p, fmt.Errorf("split failed: %w", err))
		return
	}

	s.setPart(ctx, a, p, domain.PartNaming, "generating filename")
	filename, err := naming.Generate(displayName, p.Descriptor.Label)
	if err != nil {
		s.failPart(ctx, a, p, fmt.Errorf("naming failed: %w", err))
		return
	}
	s.mu.Lock()
	p.Filename = filename
	s.mu.Unlock()

	s.setPart(ctx, a, p, domain.PartUploading, fmt.Sprintf("uploading %s", filename))
	fileID, err := s.deps.Storage.UploadFile(ctx, data, filename, folderID, "application/pdf")
	if err != nil {
		s.failPart(ctx, a, p, fmt.Errorf("upload failed: %w", err))
		return
	}

	s.mu.Lock()
	p.FileID = fileID
	s.mu.Unlock()
	s.setPart(ctx, a, p, domain.PartDone, "uploaded")
	metrics.IncPart("done")
	log.Info().Str("arrangement_id", a.ID).Str("part", p.Descriptor.Label).Str("filename", filename).Str("file_id", fileID).Msg("part uploaded")
}

// finalize picks the terminal status from the part outcomes.
func (s *Service) finalize(ctx context.Context, a *domain.Arrangement, started time.Time) error {
	s.mu.Lock()
	done, failed := a.PartCounts()
	total := len(a.Parts)
	s.mu.Unlock()

	if failed == 0 {
		s.transition(ctx, a, domain.ArrangementDone, fmt.Sprintf("all %d parts uploaded", total))
		metrics.IncArrangement("done")
	} else {
		s.transition(ctx, a, domain.ArrangementAllPartsProcessed, fmt.Sprintf("%d of %d parts uploaded, %d failed", done, total, failed))
		metrics.IncArrangement("all_parts_processed")
	}
	log.Info().Str("arrangement_id", a.ID).Int("parts_done", done).Int("parts_failed", failed).Dur("took", time.Since(started)).Msg("arrangement finished")
	return nil
}

// transition moves the arrangement to a new status and publishes a
// snapshot.
func (s *Service) transition(ctx context.Context, a *domain.Arrangement, st domain.ArrangementStatus, msg string) {
	s.mu.Lock()
	a.Status = st
	a.Message = msg
	a.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.publish(ctx, a)
	log.Debug().Str("arrangement_id", a.ID).Str("status", string(st)).Msg(msg)
}

// fail moves the arrangement to the terminal error status, keeping the
// original error text for display. Parts already created are left in
// whatever state they reached.
func (s *Service) fail(ctx context.Context, a *domain.Arrangement, err error) error {
	s.mu.Lock()
	a.Status = domain.ArrangementError
	a.Message = "processing failed"
	a.ErrorDetail = err.Error()
	a.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.publish(ctx, a)
	metrics.IncArrangement("error")
	log.Error().Err(err).Str("arrangement_id", a.ID).Msg("arrangement failed")
	return err
}

func (s *Service) setPart(ctx context.Context, a *domain.Arrangement, p *domain.Part, st domain.PartStatus, msg string) {
	s.mu.Lock()
	p.Status = st
	p.Message = msg
	a.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.publish(ctx, a)
}

func (s *Service) failPart(ctx context.Context, a *domain.Arrangement, p *domain.Part, err error) {
	s.mu.Lock()
	p.Status = domain.PartError
	p.Message = "failed"
	p.ErrorDetail = err.Error()
	a.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.publish(ctx, a)
	metrics.IncPart("error")
	log.Error().Err(err).Str("arrangement_id", a.ID).Str("part", p.Descriptor.Label).Msg("part failed")
}
