package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xyd945/travel-ai-agent/internal/app"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

type memRepo struct {
	mu  sync.Mutex
	ids []string
}

func (m *memRepo) UpsertHotel(_ context.Context, h domain.HotelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, h.ID)
	return nil
}
func (m *memRepo) FindByCity(context.Context, string, string, int) ([]domain.HotelRecord, error) {
	return nil, nil
}
func (m *memRepo) FindByNameOrCity(context.Context, domain.HotelsQuery) ([]domain.HotelRecord, error) {
	return nil, nil
}
func (m *memRepo) Count(context.Context) (int64, error) { return int64(len(m.ids)), nil }
func (m *memRepo) Ping(context.Context) error            { return nil }

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hotels.json")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestReadDocs_JSONLines(t *testing.T) {
	p := writeFile(t, "{\"id\":\"a\",\"name\":\"A\"}\n\n{\"id\":\"b\",\"name\":\"B\"}\n")
	docs, err := readDocs(p)
	if err != nil {
		t.Fatalf("readDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 docs, got %d", len(docs))
	}
}

func TestReadDocs_Array(t *testing.T) {
	p := writeFile(t, "  \n[{\"id\":\"a\",\"name\":\"A\"},{\"id\":\"b\",\"name\":\"B\"},{\"id\":\"c\",\"name\":\"C\"}]")
	docs, err := readDocs(p)
	if err != nil {
		t.Fatalf("readDocs: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("want 3 docs, got %d", len(docs))
	}
}

func TestReadDocs_Empty(t *testing.T) {
	docs, err := readDocs(writeFile(t, "\n  \n"))
	if err != nil || len(docs) != 0 {
		t.Fatalf("docs=%d err=%v", len(docs), err)
	}
}

func TestRun_CountsFailures(t *testing.T) {
	p := writeFile(t, `{"id":"a","name":"A","city":"Paris"}
{"id":"b"}
not json
{"hotel_id":"c","hotel_name":"C"}
`)
	docs, err := readDocs(p)
	if err != nil {
		t.Fatalf("readDocs: %v", err)
	}
	repo := &memRepo{}
	ok, failed := run(context.Background(), app.NewIngestionService(repo, nil), docs, 2)
	if ok != 2 || failed != 2 {
		t.Fatalf("ok=%d failed=%d", ok, failed)
	}
	if len(repo.ids) != 2 {
		t.Fatalf("upserts = %v", repo.ids)
	}
}
