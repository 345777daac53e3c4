package sitepress

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 30 * time.Second

// startScheduler refreshes the site cache on the SiteConfig.CacheRefresh
// schedule. An empty schedule disables it.
func (a *App) startScheduler() error {
	if a.Config.CacheRefresh == "" {
		return nil
	}
	a.cron = cron.New()
	_, err := a.cron.AddFunc(a.Config.CacheRefresh, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := a.SiteCache.Refresh(ctx); err != nil {
			a.Logger.Error("site cache refresh failed", "error", err)
			return
		}
		a.Logger.Debug("site cache refreshed")
	})
	if err != nil {
		a.cron = nil
		return fmt.Errorf("sitepress: invalid cache refresh schedule %q: %w", a.Config.CacheRefresh, err)
	}
	a.cron.Start()
	a.Logger.Debug("cache refresh scheduled", "schedule", a.Config.CacheRefresh)
	return nil
}

func (a *App) stopScheduler() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.cron = nil
}
