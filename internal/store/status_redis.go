package store

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ArrangementStatus is the externally visible progress record mirrored to
// Redis after every transition, so dashboards can poll without reaching
// into the in-process state.
type ArrangementStatus struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	DisplayName string    `json:"display_name"`
	PartsTotal  int       `json:"parts_total"`
	PartsDone   int       `json:"parts_done"`
	PartsFailed int       `json:"parts_failed"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RedisStatus struct {
	client *redis.Client
	keyNS  string
}

func NewRedisStatus(redisURL string) (*RedisStatus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStatus{client: c, keyNS: "arrangement"}, nil
}

func (s *RedisStatus) key(id string) string { return fmt.Sprintf("%s:%s:status", s.keyNS, id) }

func (s *RedisStatus) Set(ctx context.Context, id string, st ArrangementStatus) error {
	m := map[string]interface{}{
		"status":       st.Status,
		"message":      st.Message,
		"display_name": st.DisplayName,
		"parts_total":  st.PartsTotal,
		"parts_done":   st.PartsDone,
		"parts_failed": st.PartsFailed,
		"error":        st.Error,
		"updated_at":   st.UpdatedAt.Format(time.RFC3339Nano),
	}
	return s.client.HSet(ctx, s.key(id), m).Err()
}

func (s *RedisStatus) Get(ctx context.Context, id string) (ArrangementStatus, bool, error) {
	res, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return ArrangementStatus{}, false, err
	}
	if len(res) == 0 {
		return ArrangementStatus{}, false, nil
	}
	st := ArrangementStatus{
		Status:      res["status"],
		Message:     res["message"],
		DisplayName: res["display_name"],
		Error:       res["error"],
	}
	fmt.Sscan(res["parts_total"], &st.PartsTotal)
	fmt.Sscan(res["parts_done"], &st.PartsDone)
	fmt.Sscan(res["parts_failed"], &st.PartsFailed)
	if v := res["updated_at"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.UpdatedAt = t
		}
	}
	return st, true, nil
}

func (s *RedisStatus) Close() error { return s.client.Close() }
