package sitepress

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerRefreshesSiteCache(t *testing.T) {
	src := &countingSource{site: SiteSetup{Title: "v1"}}
	a := &App{
		Config:    SiteConfig{CacheRefresh: "@every 1s"},
		SiteCache: NewSiteCache(NewMemoryCache(), src, time.Hour, discardLogger()),
		Logger:    discardLogger(),
	}
	if _, err := a.SiteCache.SiteSetup(context.Background()); err != nil {
		t.Fatalf("SiteSetup: %v", err)
	}
	src.site.Title = "v2"

	if err := a.startScheduler(); err != nil {
		t.Fatalf("startScheduler: %v", err)
	}
	defer a.stopScheduler()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ss, _ := a.SiteCache.SiteSetup(context.Background())
		if ss.Title == "v2" {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("site cache was not refreshed by the scheduler")
}

func TestSchedulerDisabledAndInvalid(t *testing.T) {
	a := &App{Logger: discardLogger()}
	if err := a.startScheduler(); err != nil {
		t.Fatalf("empty schedule: %v", err)
	}
	if a.cron != nil {
		t.Error("cron started without a schedule")
	}
	a.stopScheduler()

	a.Config.CacheRefresh = "every tuesday"
	if err := a.startScheduler(); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if a.cron != nil {
		t.Error("cron kept after invalid schedule")
	}
}
