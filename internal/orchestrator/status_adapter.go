package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/domain"
	"github.com/local/scorefiler/internal/store"
)

// RedisSink mirrors arrangement progress into Redis so external tooling
// can poll status without going through the HTTP API. Mirror failures are
// logged and dropped; progress mirroring never blocks the pipeline.
type RedisSink struct {
	status *store.RedisStatus
}

func NewRedisSink(status *store.RedisStatus) *RedisSink {
	return &RedisSink{status: status}
}

func (r *RedisSink) Publish(ctx context.Context, a domain.Arrangement) {
	done, failed := a.PartCounts()
	st := store.ArrangementStatus{
		Status:      string(a.Status),
		Message:     a.Message,
		DisplayName: a.DisplayName,
		PartsTotal:  len(a.Parts),
		PartsDone:   done,
		PartsFailed: failed,
		Error:       a.ErrorDetail,
		UpdatedAt:   a.UpdatedAt,
	}
	if err := r.status.Set(ctx, a.ID, st); err != nil {
		log.Warn().Err(err).Str("arrangement_id", a.ID).Msg("status mirror write failed")
	}
}
