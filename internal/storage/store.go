// Package storage persists roadmaps, scheduled tasks and auto-post configs
// as individual Redis records with guild indexes. Roadmap saves are guarded
// by a version stamp checked inside a WATCH transaction, so a concurrent
// writer surfaces as a conflict instead of a silent lost update.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
	"github.com/samkari/roadmap-service/utils"
)

const (
	RoadmapKeyPrefix   = "roadmap:data:"
	RoadmapIndexAll    = "roadmap:index:all"
	RoadmapIndexGuild  = "roadmap:index:guild:"
	ScheduleKeyPrefix  = "schedule:data:"
	ScheduleIndexAll   = "schedule:index:all"
	AutoPostKeyPrefix  = "autopost:data:"
	AutoPostIndexAll   = "autopost:index:all"
	SchedulerLastRun   = "schedule:lastrun"
	DocumentVersionKey = "1.0.0"
)

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// CreateRoadmap writes a new roadmap record. Fails with ErrAlreadyExists
// when the key is present; the existing record is left untouched.
func (s *Store) CreateRoadmap(ctx context.Context, r *types.Roadmap) error {
	key := RoadmapKeyPrefix + r.ID

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: roadmap %q", roadmap.ErrAlreadyExists, r.ID)
		}

		r.Version = 1
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal roadmap: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, RoadmapIndexAll, r.ID)
			pipe.SAdd(ctx, RoadmapIndexGuild+r.GuildID, r.ID)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: roadmap %q", roadmap.ErrConflict, r.ID)
	}
	if errors.Is(err, roadmap.ErrConflict) {
		utils.Default.SaveConflicts.Add(1)
	}
	return err
}

// GetRoadmap retrieves a roadmap by its composite key.
func (s *Store) GetRoadmap(ctx context.Context, id string) (*types.Roadmap, error) {
	data, err := s.client.Get(ctx, RoadmapKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: roadmap %q", roadmap.ErrNotFound, id)
		}
		return nil, err
	}

	var r types.Roadmap
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("corrupt roadmap record %q: %w", id, err)
	}
	return &r, nil
}

// SaveRoadmap rewrites an existing roadmap record. The caller's Version
// must match the stored one; on success the version is bumped in place.
// A mismatch or a concurrent WATCH failure returns ErrConflict.
func (s *Store) SaveRoadmap(ctx context.Context, r *types.Roadmap) error {
	key := RoadmapKeyPrefix + r.ID

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("%w: roadmap %q", roadmap.ErrNotFound, r.ID)
			}
			return err
		}

		var current types.Roadmap
		if err := json.Unmarshal(data, &current); err != nil {
			return fmt.Errorf("corrupt roadmap record %q: %w", r.ID, err)
		}
		if current.Version != r.Version {
			return fmt.Errorf("%w: roadmap %q (version %d, stored %d)",
				roadmap.ErrConflict, r.ID, r.Version, current.Version)
		}

		r.Version++
		updated, err := json.Marshal(r)
		if err != nil {
			r.Version--
			return fmt.Errorf("failed to marshal roadmap: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			r.Version--
		}
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: roadmap %q", roadmap.ErrConflict, r.ID)
	}
	if errors.Is(err, roadmap.ErrConflict) {
		utils.Default.SaveConflicts.Add(1)
	}
	return err
}

// DeleteRoadmap hard-deletes a roadmap and reports whether it existed.
func (s *Store) DeleteRoadmap(ctx context.Context, id string) (bool, error) {
	r, err := s.GetRoadmap(ctx, id)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, RoadmapKeyPrefix+id)
	pipe.SRem(ctx, RoadmapIndexAll, id)
	pipe.SRem(ctx, RoadmapIndexGuild+r.GuildID, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// GetRoadmapsByGuild retrieves all roadmaps of one guild.
func (s *Store) GetRoadmapsByGuild(ctx context.Context, guildID string) ([]*types.Roadmap, error) {
	return s.roadmapsByIndex(ctx, RoadmapIndexGuild+guildID)
}

// GetAllRoadmaps retrieves every roadmap in the store.
func (s *Store) GetAllRoadmaps(ctx context.Context) ([]*types.Roadmap, error) {
	return s.roadmapsByIndex(ctx, RoadmapIndexAll)
}

func (s *Store) roadmapsByIndex(ctx context.Context, indexKey string) ([]*types.Roadmap, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	roadmaps := make([]*types.Roadmap, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRoadmap(ctx, id)
		if err != nil {
			// Index entries can outlive their record briefly during a
			// delete; skip rather than fail the whole listing.
			continue
		}
		roadmaps = append(roadmaps, r)
	}
	return roadmaps, nil
}

// CreateScheduledTask stores a weekly task definition.
func (s *Store) CreateScheduledTask(ctx context.Context, st *types.ScheduledTask) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled task: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, ScheduleKeyPrefix+st.ID, data, 0)
	pipe.SAdd(ctx, ScheduleIndexAll, st.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// GetScheduledTasks retrieves every scheduled task definition.
func (s *Store) GetScheduledTasks(ctx context.Context) ([]*types.ScheduledTask, error) {
	ids, err := s.client.SMembers(ctx, ScheduleIndexAll).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*types.ScheduledTask, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, ScheduleKeyPrefix+id).Bytes()
		if err != nil {
			continue
		}
		var st types.ScheduledTask
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		tasks = append(tasks, &st)
	}
	return tasks, nil
}

// DeleteScheduledTask removes a weekly task definition and reports whether
// it existed.
func (s *Store) DeleteScheduledTask(ctx context.Context, id string) (bool, error) {
	removed, err := s.client.SRem(ctx, ScheduleIndexAll, id).Result()
	if err != nil {
		return false, err
	}
	if err := s.client.Del(ctx, ScheduleKeyPrefix+id).Err(); err != nil {
		return false, err
	}
	return removed > 0, nil
}

// LastSchedulerRun returns the YYYY-MM-DD marker of the last scheduler
// pass, or "" when it has never run.
func (s *Store) LastSchedulerRun(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, SchedulerLastRun).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// SetLastSchedulerRun records the scheduler's once-per-day marker.
func (s *Store) SetLastSchedulerRun(ctx context.Context, day string) error {
	return s.client.Set(ctx, SchedulerLastRun, day, 0).Err()
}

// SaveAutoPost writes a guild's auto-post configuration.
func (s *Store) SaveAutoPost(ctx context.Context, cfg *types.AutoPostConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal autopost config: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, AutoPostKeyPrefix+cfg.GuildID, data, 0)
	pipe.SAdd(ctx, AutoPostIndexAll, cfg.GuildID)
	_, err = pipe.Exec(ctx)
	return err
}

// GetAutoPosts retrieves every guild's auto-post configuration.
func (s *Store) GetAutoPosts(ctx context.Context) ([]*types.AutoPostConfig, error) {
	ids, err := s.client.SMembers(ctx, AutoPostIndexAll).Result()
	if err != nil {
		return nil, err
	}

	configs := make([]*types.AutoPostConfig, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, AutoPostKeyPrefix+id).Bytes()
		if err != nil {
			continue
		}
		var cfg types.AutoPostConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			continue
		}
		configs = append(configs, &cfg)
	}
	return configs, nil
}

// Snapshot assembles the full-store document served by the API and written
// by backups. The layout doubles as the backup export format.
func (s *Store) Snapshot(ctx context.Context) (*types.Document, error) {
	doc := &types.Document{
		Roadmaps:       map[string]*types.Roadmap{},
		ScheduledTasks: map[string]*types.ScheduledTask{},
		AutoPosting:    map[string]*types.AutoPostConfig{},
		LastUpdated:    time.Now().UTC().Format(time.RFC3339),
		Version:        DocumentVersionKey,
	}

	roadmaps, err := s.GetAllRoadmaps(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roadmaps {
		doc.Roadmaps[r.ID] = r
	}

	scheduled, err := s.GetScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range scheduled {
		doc.ScheduledTasks[st.ID] = st
	}

	autoposts, err := s.GetAutoPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range autoposts {
		doc.AutoPosting[cfg.GuildID] = cfg
	}

	return doc, nil
}
