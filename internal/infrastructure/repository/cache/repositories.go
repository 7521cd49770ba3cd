package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	basecache "github.com/riskibarqy/volleyball-bot/internal/platform/cache"
)

type CatalogRepository struct {
	next  survey.CatalogRepository
	cache *basecache.Store
}

func NewCatalogRepository(next survey.CatalogRepository, cache *basecache.Store) *CatalogRepository {
	return &CatalogRepository{next: next, cache: cache}
}

func (r *CatalogRepository) LoadCatalog(ctx context.Context) (*survey.Catalog, error) {
	v, err := r.cache.GetOrLoad(ctx, "survey:catalog", func(ctx context.Context) (any, error) {
		return r.next.LoadCatalog(ctx)
	})
	if err != nil {
		return nil, err
	}

	catalog, _ := v.(*survey.Catalog)
	return catalog, nil
}

// EventRepository caches event reads. Writes go through and drop every
// cached event entry; roster reads and joins are never cached.
type EventRepository struct {
	next  event.Repository
	cache *basecache.Store
}

func NewEventRepository(next event.Repository, cache *basecache.Store) *EventRepository {
	return &EventRepository{next: next, cache: cache}
}

func (r *EventRepository) Create(ctx context.Context, e event.Event) (event.Event, error) {
	created, err := r.next.Create(ctx, e)
	if err != nil {
		return event.Event{}, err
	}
	r.cache.DeletePrefix(ctx, "event:")
	return created, nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (event.Event, bool, error) {
	key := "event:id:" + strconv.FormatInt(eventID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return cachedEventByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return event.Event{}, false, err
	}

	cached, _ := v.(cachedEventByID)
	return cached.value, cached.exists, nil
}

type cachedEventByID struct {
	value  event.Event
	exists bool
}

func (r *EventRepository) ListActive(ctx context.Context) ([]event.Summary, error) {
	v, err := r.cache.GetOrLoad(ctx, "event:list:active", func(ctx context.Context) (any, error) {
		items, err := r.next.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return append([]event.Summary(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]event.Summary)
	return append([]event.Summary(nil), items...), nil
}

func (r *EventRepository) CountParticipants(ctx context.Context, eventID int64) (int, error) {
	return r.next.CountParticipants(ctx, eventID)
}

func (r *EventRepository) Join(ctx context.Context, eventID, playerID int64, joinedAt time.Time) (event.Participant, error) {
	participant, err := r.next.Join(ctx, eventID, playerID, joinedAt)
	if err != nil {
		return event.Participant{}, err
	}
	r.cache.Delete(ctx, "event:list:active")
	return participant, nil
}

func (r *EventRepository) ListEntries(ctx context.Context, eventID int64) ([]event.Entry, error) {
	return r.next.ListEntries(ctx, eventID)
}
