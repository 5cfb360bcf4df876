package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/models"
)

// ViewsService is the read-only query facade for the presentation
// layer: filtered, sorted views memoized in an expiring cache,
// invalidated by store change events and re-broadcast to subscribers.
// No mutation happens through this component.
type ViewsService struct {
	sites       *repositories.SiteRepository
	schedules   *repositories.ScheduleRepository
	activities  *repositories.ActivityRepository
	forms       *repositories.FormRepository
	performance *repositories.PerformanceRepository

	cache   *gocache.Cache
	group   singleflight.Group
	bus     *ChangeBus
	out     *ChangeBus
	metrics *metrics.MetricsRegistry
	done    chan struct{}
}

func NewViewsService(
	sites *repositories.SiteRepository,
	schedules *repositories.ScheduleRepository,
	activities *repositories.ActivityRepository,
	forms *repositories.FormRepository,
	performance *repositories.PerformanceRepository,
	bus *ChangeBus,
	reg *metrics.MetricsRegistry,
) *ViewsService {
	v := &ViewsService{
		sites:       sites,
		schedules:   schedules,
		activities:  activities,
		forms:       forms,
		performance: performance,
		cache:       gocache.New(5*time.Minute, 10*time.Minute),
		bus:         bus,
		out:         NewChangeBus(),
		metrics:     reg,
		done:        make(chan struct{}),
	}
	if bus != nil {
		go v.watch(bus.Subscribe())
	}
	return v
}

// viewPrefixes maps an entity kind to the cache key prefixes it
// invalidates. Site changes clear everything: archive cascades touch
// every feed.
var viewPrefixes = map[EntityKind][]string{
	KindSite:        {""},
	KindSchedule:    {"schedules:", "activities:"},
	KindActivity:    {"activities:"},
	KindForm:        {"forms:"},
	KindPerformance: {"performance:"},
}

func (v *ViewsService) watch(events <-chan ChangeEvent) {
	for {
		select {
		case <-v.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			v.invalidate(event.Kind)
			v.out.Publish(event)
		}
	}
}

func (v *ViewsService) invalidate(kind EntityKind) {
	prefixes, ok := viewPrefixes[kind]
	if !ok {
		return
	}
	for key := range v.cache.Items() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				v.cache.Delete(key)
				break
			}
		}
	}
}

// Subscribe returns a channel of change events for push reactivity.
func (v *ViewsService) Subscribe() <-chan ChangeEvent {
	return v.out.Subscribe()
}

// Refresh drops every memoized view, forcing the next reads to hit
// the store. Used by the manual pull-to-refresh signal.
func (v *ViewsService) Refresh() {
	v.cache.Flush()
	v.out.Publish(ChangeEvent{Kind: KindSite})
}

// Close stops the event watcher.
func (v *ViewsService) Close() {
	close(v.done)
}

func view[T any](v *ViewsService, ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, found := v.cache.Get(key); found {
		if v.metrics != nil {
			v.metrics.ViewCacheHitsTotal.WithLabelValues(key).Inc()
		}
		return raw.(T), nil
	}
	if v.metrics != nil {
		v.metrics.ViewCacheMissesTotal.WithLabelValues(key).Inc()
	}

	result, err, _ := v.group.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		v.cache.Set(key, loaded, gocache.DefaultExpiration)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// ActiveSites returns non-archived sites sorted by name.
func (v *ViewsService) ActiveSites(ctx context.Context) ([]models.Site, error) {
	return view(v, ctx, "sites:active", func(ctx context.Context) ([]models.Site, error) {
		return v.sites.List(ctx, repositories.SiteFilter{})
	})
}

// ArchivedSites returns archived sites sorted by name.
func (v *ViewsService) ArchivedSites(ctx context.Context) ([]models.Site, error) {
	return view(v, ctx, "sites:archived", func(ctx context.Context) ([]models.Site, error) {
		return v.sites.List(ctx, repositories.SiteFilter{ArchivedOnly: true})
	})
}

// SchedulesForDate returns the active visits for one day, ascending
// by date and time.
func (v *ViewsService) SchedulesForDate(ctx context.Context, date string) ([]models.Schedule, error) {
	return view(v, ctx, "schedules:date:"+date, func(ctx context.Context) ([]models.Schedule, error) {
		return v.schedules.List(ctx, repositories.ScheduleFilter{Date: &date})
	})
}

// SchedulesForSite returns the active visits for one site.
func (v *ViewsService) SchedulesForSite(ctx context.Context, siteID string) ([]models.Schedule, error) {
	return view(v, ctx, "schedules:site:"+siteID, func(ctx context.Context) ([]models.Schedule, error) {
		return v.schedules.List(ctx, repositories.ScheduleFilter{SiteID: &siteID})
	})
}

// ArchivedSchedulesForSite returns the archived visits for one site.
func (v *ViewsService) ArchivedSchedulesForSite(ctx context.Context, siteID string) ([]models.Schedule, error) {
	return view(v, ctx, "schedules:site-archived:"+siteID, func(ctx context.Context) ([]models.Schedule, error) {
		return v.schedules.List(ctx, repositories.ScheduleFilter{SiteID: &siteID, ArchivedOnly: true})
	})
}

// ActivityFeed returns the newest activities, optionally filtered by
// type, newest first.
func (v *ViewsService) ActivityFeed(ctx context.Context, activityType *string, limit int) ([]models.Activity, error) {
	key := fmt.Sprintf("activities:feed:%d", limit)
	if activityType != nil {
		key += ":" + *activityType
	}
	return view(v, ctx, key, func(ctx context.Context) ([]models.Activity, error) {
		return v.activities.List(ctx, repositories.ActivityFilter{Type: activityType, Limit: limit})
	})
}

// FormsForSite returns the active inspection forms for one site,
// newest first.
func (v *ViewsService) FormsForSite(ctx context.Context, siteID string) ([]models.MaintenanceForm, error) {
	return view(v, ctx, "forms:site:"+siteID, func(ctx context.Context) ([]models.MaintenanceForm, error) {
		return v.forms.List(ctx, repositories.FormFilter{SiteID: &siteID})
	})
}

// PerformanceSeries returns the generation feed for one site, newest
// first.
func (v *ViewsService) PerformanceSeries(ctx context.Context, siteID string) ([]models.PerformanceRecord, error) {
	return view(v, ctx, "performance:site:"+siteID, func(ctx context.Context) ([]models.PerformanceRecord, error) {
		return v.performance.List(ctx, repositories.PerformanceFilter{SiteID: &siteID})
	})
}
