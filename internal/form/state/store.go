package state

import (
	"sync"
	"sync/atomic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// Store keeps one FormRecord per FormRequestID for the lifetime of the
// process. Updates swap the whole map atomically so render-side readers never
// observe a half-written record; the mutex serialises writers only.
type Store struct {
	mu      sync.Mutex
	records atomic.Pointer[map[model.FormRequestID]*model.FormRecord]
}

func NewStore() *Store {
	s := &Store{}
	empty := make(map[model.FormRequestID]*model.FormRecord)
	s.records.Store(&empty)
	return s
}

// GetOrPending returns the stored record, or a zero-value non-submitted
// record when none exists. It never creates state.
func (s *Store) GetOrPending(id model.FormRequestID) *model.FormRecord {
	if rec, ok := (*s.records.Load())[id]; ok {
		return rec
	}
	return &model.FormRecord{}
}

// Get returns the stored record and whether it exists.
func (s *Store) Get(id model.FormRequestID) (*model.FormRecord, bool) {
	rec, ok := (*s.records.Load())[id]
	return rec, ok
}

// OpenPending stores a new pending record. A record already present is left
// untouched, which makes repeated triggers idempotent no-ops.
func (s *Store) OpenPending(id model.FormRequestID, rec model.FormRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := (*s.records.Load())[id]; ok {
		return
	}
	rec.IsSubmitted = false
	rec.IsCancelled = false
	s.put(id, &rec)
}

// MarkSubmitted transitions the record to its submitted terminal state,
// preserving every other field. Terminal records are never touched again.
func (s *Store) MarkSubmitted(id model.FormRequestID, submitted map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := (*s.records.Load())[id]
	if !ok || rec.Terminal() {
		if ok {
			lg := logx.Component("form_store")
			lg.Warn().Str("request_id", string(id)).Msg("submit on terminal record ignored")
		}
		return
	}
	next := *rec
	next.IsSubmitted = true
	next.SubmittedData = submitted
	s.put(id, &next)
}

// MarkCancelled transitions the record to its cancelled terminal state.
func (s *Store) MarkCancelled(id model.FormRequestID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := (*s.records.Load())[id]
	if !ok || rec.Terminal() {
		return
	}
	next := *rec
	next.IsCancelled = true
	s.put(id, &next)
}

// put copies the current map, applies the change and swaps the pointer.
// Callers must hold mu.
func (s *Store) put(id model.FormRequestID, rec *model.FormRecord) {
	cur := *s.records.Load()
	next := make(map[model.FormRequestID]*model.FormRecord, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[id] = rec
	s.records.Store(&next)
}
