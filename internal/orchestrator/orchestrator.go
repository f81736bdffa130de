// Package orchestrator owns the arrangement processing state machine:
// merge, metadata extraction, folder resolution and the per-part
// split/name/upload loop, with per-part failure isolation.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/ai"
	"github.com/local/scorefiler/internal/domain"
	"github.com/local/scorefiler/internal/filetype"
	"github.com/local/scorefiler/internal/pdf"
	"github.com/local/scorefiler/internal/storage"
)

// Document is one loaded working document.
type Document interface {
	PageCount() int
	Bytes() []byte
	ExtractRange(start, end int) ([]byte, error)
}

// Documents provides load and merge over raw PDF bytes.
type Documents interface {
	Load(name string, data []byte) (Document, error)
	Merge(inputs []pdf.Input) ([]byte, error)
}

// Extractor is the metadata-extraction surface: transport encoding, one
// blocking call, caller-side validation.
type Extractor interface {
	Prepare(doc []byte) (ai.Payload, error)
	Extract(ctx context.Context, p ai.Payload, allowed []string) (ai.Metadata, error)
}

// StatusSink receives a snapshot after every transition. Implementations
// must not mutate the snapshot. A nil sink disables mirroring.
type StatusSink interface {
	Publish(ctx context.Context, a domain.Arrangement)
}

// Dependencies wires the orchestrator's collaborators.
type Dependencies struct {
	Docs    Documents
	Extract Extractor
	Storage storage.Client
	Status  StatusSink
}

// Options holds processing parameters.
type Options struct {
	// RootFolderID is the storage folder whose immediate subfolders form
	// the allowed category set.
	RootFolderID string
	// Concurrency bounds ProcessAllReady across arrangements; 1 drains
	// them strictly sequentially. Steps within one arrangement are always
	// sequential.
	Concurrency int
}

// Service drives arrangements through the pipeline. All state mutation
// happens through its transition helpers; callers only see snapshots.
type Service struct {
	deps Dependencies
	opts Options

	mu           sync.Mutex
	arrangements map[string]*domain.Arrangement
	order        []string
	inflight     map[string]struct{}
}

func New(deps Dependencies, opts Options) *Service {
	if deps.Docs == nil {
		deps.Docs = pdfDocuments{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Service{
		deps:         deps,
		opts:         opts,
		arrangements: make(map[string]*domain.Arrangement),
		inflight:     make(map[string]struct{}),
	}
}

// AddArrangement creates an empty arrangement and returns its id.
func (s *Service) AddArrangement() string {
	id := uuid.NewString()
	a := domain.NewArrangement(id)

	s.mu.Lock()
	s.arrangements[id] = a
	s.order = append(s.order, id)
	s.mu.Unlock()

	log.Info().Str("arrangement_id", id).Msg("arrangement created")
	s.publish(context.Background(), a)
	return id
}

// AttachResult reports the outcome of one attach call.
type AttachResult struct {
	Accepted int      `json:"accepted"`
	Rejected []string `json:"rejected,omitempty"`
}

// AttachFiles validates each file by magic bytes and attaches the PDFs.
// Non-PDF files are rejected individually and never abort the attachment;
// the arrangement becomes ready once at least one valid file is attached.
func (s *Service) AttachFiles(id string, files []domain.InputFile) (AttachResult, error) {
	s.mu.Lock()
	a, ok := s.arrangements[id]
	if !ok {
		s.mu.Unlock()
		return AttachResult{}, fmt.Errorf("unknown arrangement %s", id)
	}
	if a.Status != domain.ArrangementPendingUpload && a.Status != domain.ArrangementReadyToProcess {
		st := a.Status
		s.mu.Unlock()
		return AttachResult{}, fmt.Errorf("arrangement %s is %s; files can no longer be attached", id, st)
	}

	var res AttachResult
	for _, f := range files {
		info := filetype.Detect(f.Name, f.Data)
		if !info.IsPDF {
			log.Warn().Str("arrangement_id", id).Str("file", f.Name).Str("mime", info.MIMEType).Msg("rejected non-PDF file")
			res.Rejected = append(res.Rejected, f.Name)
			continue
		}
		a.Files = append(a.Files, f)
		res.Accepted++
	}

	if len(a.Files) > 0 && a.Status == domain.ArrangementPendingUpload {
		a.Status = domain.ArrangementReadyToProcess
	}
	if res.Accepted > 0 {
		a.Message = fmt.Sprintf("%d file(s) attached", len(a.Files))
	}
	s.mu.Unlock()

	if res.Accepted > 0 {
		s.publish(context.Background(), a)
	}
	return res, nil
}

// Process runs the full pipeline for one arrangement, blocking until a
// terminal state. Re-invoking a terminal arrangement re-runs the pipeline
// from the top; partial resumption is not supported.
func (s *Service) Process(ctx context.Context, id string) error {
	s.mu.Lock()
	a, ok := s.arrangements[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown arrangement %s", id)
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return fmt.Errorf("arrangement %s is already being processed", id)
	}
	if a.Status == domain.ArrangementPendingUpload {
		s.mu.Unlock()
		return fmt.Errorf("arrangement %s has no files attached", id)
	}
	if a.Status != domain.ArrangementReadyToProcess && !a.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("arrangement %s is %s", id, a.Status)
	}
	s.inflight[id] = struct{}{}
	s.reset(a)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()

	return s.run(ctx, a)
}

// reset clears prior results so a re-run starts from the top.
// Caller holds the lock.
func (s *Service) reset(a *domain.Arrangement) {
	a.Status = domain.ArrangementReadyToProcess
	a.Message = fmt.Sprintf("%d file(s) attached", len(a.Files))
	a.Metadata = nil
	a.CategoryFolderID = ""
	a.ArrangementFolderID = ""
	a.Parts = nil
	a.ErrorDetail = ""
}

// ProcessAllReady drains every ready arrangement. With Concurrency 1 this
// is strictly sequential in creation order; higher values run a bounded
// pool, each arrangement still internally sequential.
func (s *Service) ProcessAllReady(ctx context.Context) {
	s.mu.Lock()
	var ready []string
	for _, id := range s.order {
		if a := s.arrangements[id]; a.Status == domain.ArrangementReadyToProcess {
			if _, busy := s.inflight[id]; !busy {
				ready = append(ready, id)
			}
		}
	}
	s.mu.Unlock()

	if len(ready) == 0 {
		log.Info().Msg("no arrangements ready to process")
		return
	}
	log.Info().Int("count", len(ready)).Int("concurrency", s.opts.Concurrency).Msg("processing ready arrangements")

	if s.opts.Concurrency <= 1 {
		for _, id := range ready {
			if err := s.Process(ctx, id); err != nil {
				log.Error().Err(err).Str("arrangement_id", id).Msg("arrangement processing failed")
			}
		}
		return
	}

	sem := make(chan struct{}, s.opts.Concurrency)
	var wg sync.WaitGroup
	for _, id := range ready {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.Process(ctx, id); err != nil {
				log.Error().Err(err).Str("arrangement_id", id).Msg("arrangement processing failed")
			}
		}(id)
	}
	wg.Wait()
}

// Snapshot returns deep copies of all arrangements in creation order.
func (s *Service) Snapshot() []domain.Arrangement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Arrangement, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.arrangements[id].Snapshot())
	}
	return out
}

// Get returns a deep copy of one arrangement.
func (s *Service) Get(id string) (domain.Arrangement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.arrangements[id]
	if !ok {
		return domain.Arrangement{}, false
	}
	return a.Snapshot(), true
}

// publish sends a snapshot to the status sink. The snapshot is taken
// under the lock; the sink call happens outside it so a slow mirror never
// blocks state reads.
func (s *Service) publish(ctx context.Context, a *domain.Arrangement) {
	if s.deps.Status == nil {
		return
	}
	s.mu.Lock()
	snap := a.Snapshot()
	s.mu.Unlock()
	s.deps.Status.Publish(ctx, snap)
}
