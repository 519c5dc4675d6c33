package jobs

import (
	"fmt"
	"sync"
	"testing"
	"time"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()

	job := dm.Job{ID: "j1", Status: dm.JobPending, CreatedAt: time.Now()}
	s.Put(job)

	got, ok := s.Get("j1")
	if !ok {
		t.Fatal("Get() ok = false")
	}
	if got.ID != "j1" || got.Status != dm.JobPending {
		t.Errorf("got %+v", got)
	}

	// 取出的是副本，修改不影响存储
	got.Status = dm.JobFailed
	again, _ := s.Get("j1")
	if again.Status != dm.JobPending {
		t.Error("Get() must return a copy")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("nope"); ok {
		t.Error("missing id must return ok = false")
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()
	s.Put(dm.Job{ID: "old", CreatedAt: base.Add(-2 * time.Hour)})
	s.Put(dm.Job{ID: "new", CreatedAt: base})
	s.Put(dm.Job{ID: "mid", CreatedAt: base.Add(-1 * time.Hour)})

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" || list[2].ID != "old" {
		t.Errorf("order = %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	s.Put(dm.Job{ID: "j1"})
	s.Delete("j1")
	if _, ok := s.Get("j1"); ok {
		t.Error("deleted job must be gone")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("j%d", i)
			s.Put(dm.Job{ID: id, CreatedAt: time.Now()})
			s.Get(id)
			s.List()
		}(i)
	}
	wg.Wait()

	if len(s.List()) != 50 {
		t.Errorf("len = %d, want 50", len(s.List()))
	}
}
