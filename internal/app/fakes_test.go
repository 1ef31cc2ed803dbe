package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

// ---- completion ----

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	block   bool // wait for ctx cancellation before answering
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

// ---- places ----

type fakePlaces struct {
	mu       sync.Mutex
	ids      map[string]string // name prefix -> place id
	details  map[string]domain.ResolvedPlace
	geo      *domain.LatLng
	geoErr   error
	calls    []string
	inFlight int
	peak     int
	delay    time.Duration
}

func (f *fakePlaces) enter(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
}

func (f *fakePlaces) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakePlaces) lookup(q string) (string, error) {
	for prefix, id := range f.ids {
		if strings.HasPrefix(q, prefix) {
			return id, nil
		}
	}
	return "", domain.ErrNotFound
}

func (f *fakePlaces) TextSearch(ctx context.Context, query string) (string, error) {
	f.enter("text:" + query)
	defer f.leave()
	return f.lookup(query)
}

func (f *fakePlaces) FindPlace(ctx context.Context, input string, bias *domain.LatLng) (string, error) {
	call := "find:" + input
	if bias != nil {
		call += "@bias"
	}
	f.enter(call)
	defer f.leave()
	return f.lookup(input)
}

func (f *fakePlaces) Details(ctx context.Context, placeID string) (domain.ResolvedPlace, error) {
	f.enter("details:" + placeID)
	defer f.leave()
	p, ok := f.details[placeID]
	if !ok {
		return domain.ResolvedPlace{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePlaces) Geocode(ctx context.Context, address string) (domain.LatLng, error) {
	f.enter("geo:" + address)
	defer f.leave()
	if f.geoErr != nil {
		return domain.LatLng{}, f.geoErr
	}
	if f.geo == nil {
		return domain.LatLng{}, domain.ErrNotFound
	}
	return *f.geo, nil
}

func (f *fakePlaces) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ---- hotel repo ----

type fakeRepo struct {
	hotels   []domain.HotelRecord
	byCity   map[string][]domain.HotelRecord // exact city match when set
	lastQ    domain.HotelsQuery
	lastCity string
	lastCC   string
	upserts  []domain.HotelRecord
	calls    int
}

func (f *fakeRepo) UpsertHotel(ctx context.Context, h domain.HotelRecord) error {
	f.upserts = append(f.upserts, h)
	return nil
}

func (f *fakeRepo) FindByCity(ctx context.Context, city, cc string, limit int) ([]domain.HotelRecord, error) {
	f.calls++
	f.lastCity, f.lastCC = city, cc
	if f.byCity != nil {
		return f.byCity[city], nil
	}
	return f.hotels, nil
}

func (f *fakeRepo) FindByNameOrCity(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelRecord, error) {
	f.calls++
	f.lastQ = q
	return f.hotels, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int64, error) { return int64(len(f.hotels)), nil }
func (f *fakeRepo) Ping(ctx context.Context) error           { return nil }

// ---- cache ----

// fakeCache stores JSON so reads never alias the written value.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }
