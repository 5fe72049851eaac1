// Package remote is an in-memory stand-in for the real server, so the demo
// can run without network access. Jobs flip from PENDING to their configured
// terminal state after a per-resource delay.
package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sky93/refreshflow"
)

type resource struct {
	attrs   map[string]string
	final   refreshflow.JobStatus
	runtime time.Duration
}

type job struct {
	final  refreshflow.JobStatus
	doneAt time.Time
}

type Server struct {
	mu        sync.Mutex
	resources map[refreshflow.ItemKind]map[string]*resource
	jobs      map[string]*job
	seq       int
}

func NewServer() *Server {
	return &Server{
		resources: make(map[refreshflow.ItemKind]map[string]*resource),
		jobs:      make(map[string]*job),
	}
}

// AddResource registers a resource whose refresh jobs will end in the given
// terminal state after runtime has elapsed.
func (s *Server) AddResource(kind refreshflow.ItemKind, id string, attrs map[string]string, final refreshflow.JobStatus, runtime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resources[kind] == nil {
		s.resources[kind] = make(map[string]*resource)
	}
	s.resources[kind][id] = &resource{attrs: attrs, final: final, runtime: runtime}
}

func (s *Server) Query(_ context.Context, kind refreshflow.ItemKind, filters map[string]string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, res := range s.resources[kind] {
		match := true
		for k, v := range filters {
			if res.attrs[k] != v {
				match = false
				break
			}
		}
		if match {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Server) Trigger(_ context.Context, kind refreshflow.ItemKind, resourceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.resources[kind][resourceID]
	if !ok {
		return "", fmt.Errorf("no %s resource %s", kind, resourceID)
	}

	s.seq++
	jobID := fmt.Sprintf("job-%d", s.seq)
	s.jobs[jobID] = &job{final: res.final, doneAt: time.Now().Add(res.runtime)}
	return jobID, nil
}

func (s *Server) GetStatus(_ context.Context, jobID string) (refreshflow.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("unknown job %s", jobID)
	}
	if time.Now().Before(j.doneAt) {
		return refreshflow.JobPending, nil
	}
	return j.final, nil
}
