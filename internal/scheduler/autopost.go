package scheduler

import (
	"context"
	"log"
)

// runAutoPost posts the next rotating message for every enabled guild and
// persists the advanced rotation index.
func (s *Scheduler) runAutoPost(ctx context.Context) {
	configs, err := s.Store.GetAutoPosts(ctx)
	if err != nil {
		log.Printf("ALARM Scheduler: autopost listing failed: %v", err)
		return
	}

	for _, cfg := range configs {
		if !cfg.Enabled || len(cfg.Messages) == 0 || cfg.ChannelID == "" {
			continue
		}

		idx := cfg.CurrentIndex % len(cfg.Messages)
		if _, err := s.Gateway.PostMessage(cfg.ChannelID, cfg.Messages[idx]); err != nil {
			log.Printf("ALARM Scheduler: autopost send failed for guild %s: %v", cfg.GuildID, err)
			continue
		}

		cfg.CurrentIndex = (idx + 1) % len(cfg.Messages)
		if err := s.Store.SaveAutoPost(ctx, cfg); err != nil {
			log.Printf("ALARM Scheduler: autopost index save failed for guild %s: %v", cfg.GuildID, err)
		}
	}
}
