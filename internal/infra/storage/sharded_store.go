package storage

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
)

const DefaultShardCount = 32

type shard struct {
	mu     sync.RWMutex
	states map[string]entity.DriverState
}

// ShardedStore keeps driver states in fixed shards keyed by xxhash of the
// driver id. Writes for one driver always serialize on the same shard lock,
// while different drivers mostly proceed in parallel.
type ShardedStore struct {
	shards []*shard
}

func NewShardedStore(shardCount int) *ShardedStore {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	s := &ShardedStore{shards: make([]*shard, shardCount)}
	for i := range s.shards {
		s.shards[i] = &shard{states: make(map[string]entity.DriverState)}
	}
	return s
}

func (s *ShardedStore) shardFor(driverID string) *shard {
	return s.shards[xxhash.Sum64String(driverID)%uint64(len(s.shards))]
}

func (s *ShardedStore) Get(driverID string) (entity.DriverState, bool) {
	sh := s.shardFor(driverID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	st, ok := sh.states[driverID]
	return st, ok
}

func (s *ShardedStore) Upsert(state entity.DriverState) (entity.DriverState, bool) {
	sh := s.shardFor(state.DriverID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, existed := sh.states[state.DriverID]
	sh.states[state.DriverID] = state
	return prev, existed
}

// ListAll holds every shard's read lock at once, acquired in index order, so
// the result is a single consistent point in time.
func (s *ShardedStore) ListAll() []entity.DriverState {
	for _, sh := range s.shards {
		sh.mu.RLock()
	}
	n := 0
	for _, sh := range s.shards {
		n += len(sh.states)
	}
	out := make([]entity.DriverState, 0, n)
	for _, sh := range s.shards {
		for _, st := range sh.states {
			out = append(out, st)
		}
	}
	for i := len(s.shards) - 1; i >= 0; i-- {
		s.shards[i].mu.RUnlock()
	}

	sortByDriverID(out)
	return out
}

func (s *ShardedStore) ListByRegion(region string) []entity.DriverState {
	var out []entity.DriverState
	for _, st := range s.ListAll() {
		if st.Region == region {
			out = append(out, st)
		}
	}
	return out
}

func (s *ShardedStore) Count() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.states)
		sh.mu.RUnlock()
	}
	return n
}

// Restore applies snapshot entries that are newer than what is held, so a
// slow snapshot load never rolls back live pings.
func (s *ShardedStore) Restore(states []entity.DriverState) int {
	applied := 0
	for _, st := range states {
		if st.DriverID == "" {
			continue
		}
		sh := s.shardFor(st.DriverID)
		sh.mu.Lock()
		cur, ok := sh.states[st.DriverID]
		if !ok || st.LastSeenAt.After(cur.LastSeenAt) {
			sh.states[st.DriverID] = st
			applied++
		}
		sh.mu.Unlock()
	}
	return applied
}

func sortByDriverID(states []entity.DriverState) {
	sort.Slice(states, func(i, j int) bool { return states[i].DriverID < states[j].DriverID })
}
