package jobs

import (
	"sort"
	"sync"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Store 进程级任务注册表
// 显式注入而非包级单例；实现必须支持轮询读与运行中写并发
type Store interface {
	Put(job dm.Job)
	Get(id string) (dm.Job, bool)
	List() []dm.Job
	Delete(id string)
}

// MemoryStore 基于 RWMutex 的内存实现
// 存取的都是值拷贝，调用方拿不到内部指针
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]dm.Job
}

// NewMemoryStore 创建内存注册表
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]dm.Job)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Put(job dm.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *MemoryStore) Get(id string) (dm.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// List 返回按创建时间倒序的任务列表
func (s *MemoryStore) List() []dm.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dm.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}
