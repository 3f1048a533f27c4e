package submissions

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/govdesk/govdesk/backend"
)

// ErrAlreadyApproved is returned when approving a submission that is
// already approved. The caller surfaces it as a warning, not a failure,
// and no write is issued.
var ErrAlreadyApproved = errors.New("this submission is already approved")

// Store is the shared in-memory set of submissions under review. It is
// populated by the concurrent four-table fetch, re-fetched whenever the
// backend change feed fires, and patched in place by the approval
// workflow. Reconciliation is last-writer-wins by updated_at, so a
// re-fetch that raced an approval cannot silently revert it.
type Store struct {
	client backend.Client
	log    *zap.Logger

	mu     sync.RWMutex
	subs   []Submission
	loaded bool
	errMsg string

	unsubscribe func()
}

// NewStore creates a Store over the given backend client.
func NewStore(client backend.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, log: log}
}

// Start performs the initial load and subscribes to the change feed. Every
// change is treated as a cue to re-fetch everything; there is no
// incremental diffing.
func (st *Store) Start(ctx context.Context) error {
	err := st.Refresh(ctx)
	st.unsubscribe = st.client.Subscribe(func(backend.Change) {
		if err := st.Refresh(context.Background()); err != nil {
			st.log.Warn("change-feed refresh failed", zap.Error(err))
		}
	})
	return err
}

// Stop removes the change-feed subscription.
func (st *Store) Stop() {
	if st.unsubscribe != nil {
		st.unsubscribe()
		st.unsubscribe = nil
	}
}

// Refresh re-fetches all four tables and reconciles the result against
// the in-memory set: a fetched row only replaces the held one when its
// update timestamp is not older.
func (st *Store) Refresh(ctx context.Context) error {
	fetched, err := FetchAll(ctx, st.client, st.log)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.errMsg = "Failed to load submissions. Please try again."
		return err
	}

	held := make(map[string]Submission, len(st.subs))
	for _, s := range st.subs {
		held[string(s.FormType)+"/"+s.ID] = s
	}
	for i, s := range fetched {
		if prev, ok := held[string(s.FormType)+"/"+s.ID]; ok {
			if prev.EffectiveTime().After(s.EffectiveTime()) {
				fetched[i] = prev
			}
		}
	}
	SortRecentFirst(fetched)
	st.subs = fetched
	st.loaded = true
	st.errMsg = ""
	return nil
}

// All returns a snapshot of the submission set.
func (st *Store) All() []Submission {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Submission, len(st.subs))
	copy(out, st.subs)
	return out
}

// Loaded reports whether an initial fetch has succeeded.
func (st *Store) Loaded() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loaded
}

// LastError is the message of the most recent failed refresh, empty after
// a successful one.
func (st *Store) LastError() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.errMsg
}

// Get returns the held submission with the given form type and id.
func (st *Store) Get(ft FormType, id string) (Submission, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, s := range st.subs {
		if s.FormType == ft && s.ID == id {
			return s, true
		}
	}
	return Submission{}, false
}

// Approve transitions one submission from pending to approved: a single
// remote update carrying the new status and timestamp, then an in-place
// patch of the held record. Approving an already-approved submission is a
// no-op that returns ErrAlreadyApproved with zero writes. On a failed
// update nothing local changes.
func (st *Store) Approve(ctx context.Context, ft FormType, id string) (Submission, error) {
	cur, ok := st.Get(ft, id)
	if !ok {
		fetched, err := FetchByID(ctx, st.client, ft, id)
		if err != nil {
			return Submission{}, err
		}
		cur = fetched
	}
	if cur.Status.Approved() {
		return cur, ErrAlreadyApproved
	}

	now := time.Now().UTC()
	_, err := st.client.Update(ctx, string(ft), id, backend.Record{
		"status":     string(StatusApproved),
		"updated_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return Submission{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.subs {
		if st.subs[i].FormType == ft && st.subs[i].ID == id {
			st.subs[i].Status = StatusApproved
			st.subs[i].UpdatedAt = now
			// Raw maps are shared by reference with every snapshot All has
			// handed out, so patch a copy and swap it in rather than
			// writing through the shared map.
			if st.subs[i].Raw != nil {
				raw := make(backend.Record, len(st.subs[i].Raw)+2)
				for k, v := range st.subs[i].Raw {
					raw[k] = v
				}
				raw["status"] = string(StatusApproved)
				raw["updated_at"] = now.Format(time.RFC3339)
				st.subs[i].Raw = raw
			}
			cur = st.subs[i]
			break
		}
	}
	cur.Status = StatusApproved
	cur.UpdatedAt = now
	return cur, nil
}
