package favstate

import (
	"context"
	"sort"
	"sync"
)

const (
	msgAdded   = "Added to favorites"
	msgRemoved = "Removed from favorites"
)

// Result describes how a toggle resolved
type Result struct {
	ItemID int
	// Favorited is the membership the toggle tried to reach
	Favorited bool
	// Superseded is set when Load or Clear ran while the request was in
	// flight; the outcome was then not applied to the set.
	Superseded bool
	Reason     Reason
	Message    string
	Err        error
}

// OK reports whether the server accepted the toggle
func (r Result) OK() bool { return r.Err == nil }

// Observer receives state notifications. Callbacks run outside the state lock,
// one at a time and in mutation order. A callback may be delivered by whichever
// goroutine is already dispatching, so it can arrive after Toggle returns.
type Observer interface {
	OnChange(ids []int)
	OnToggleSucceeded(result Result)
	OnToggleFailed(result Result)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped
type ObserverFuncs struct {
	Change    func(ids []int)
	Succeeded func(result Result)
	Failed    func(result Result)
}

func (o ObserverFuncs) OnChange(ids []int) {
	if o.Change != nil {
		o.Change(ids)
	}
}

func (o ObserverFuncs) OnToggleSucceeded(result Result) {
	if o.Succeeded != nil {
		o.Succeeded(result)
	}
}

func (o ObserverFuncs) OnToggleFailed(result Result) {
	if o.Failed != nil {
		o.Failed(result)
	}
}

// Option customizes State construction
type Option func(*State)

// WithSerializedToggles makes toggles on the same item wait for the previous
// one to resolve before reading membership. Only the first toggle of a burst
// is applied before Toggle returns; later ones are applied when they start.
// A queued toggle whose context ends before it starts leaves the set alone and
// is reported through OnToggleFailed.
func WithSerializedToggles() Option {
	return func(s *State) {
		s.serialize = true
	}
}

// State is the session's view of which items are favorited. It outlives the
// views that read it, so late results still land here.
type State struct {
	gateway Gateway

	mu         sync.Mutex
	ids        map[int]struct{}
	generation uint64
	observers  map[*subscription]struct{}
	inflight   map[int]chan struct{}
	serialize  bool

	// pending holds notifications in mutation order until dispatched
	pending     []func()
	dispatching bool
}

type subscription struct {
	observer Observer
}

// New creates an empty state backed by gateway
func New(gateway Gateway, opts ...Option) *State {
	s := &State{
		gateway:   gateway,
		ids:       map[int]struct{}{},
		observers: map[*subscription]struct{}{},
		inflight:  map[int]chan struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it
func (s *State) Subscribe(observer Observer) func() {
	sub := &subscription{observer: observer}
	s.mu.Lock()
	s.observers[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, sub)
			s.mu.Unlock()
		})
	}
}

// IsFavorite reports whether id is currently believed to be favorited
func (s *State) IsFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the favorited ids in ascending order
func (s *State) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedIDsLocked()
}

// Load replaces the set wholesale with the server's list. Toggles in flight
// when it lands are superseded and will not roll back over it.
func (s *State) Load(ctx context.Context) error {
	ids, err := s.gateway.FavoriteIDs(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ids = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.generation++
	s.notifyLocked(func(o Observer, snapshot []int) { o.OnChange(snapshot) })
	return nil
}

// Clear discards the set, as on logout. In-flight toggles are superseded.
func (s *State) Clear() {
	s.mu.Lock()
	s.ids = map[int]struct{}{}
	s.generation++
	s.notifyLocked(func(o Observer, snapshot []int) { o.OnChange(snapshot) })
}

// Toggle flips id optimistically, notifies observers and then asks the
// gateway to confirm. The returned channel yields exactly one Result.
func (s *State) Toggle(ctx context.Context, id int) <-chan Result {
	out := make(chan Result, 1)

	s.mu.Lock()
	if !s.serialize {
		wasFavorite, gen := s.flipLocked(id)
		go s.resolve(ctx, id, wasFavorite, gen, nil, out)
		return out
	}

	prev := s.inflight[id]
	done := make(chan struct{})
	s.inflight[id] = done
	if prev == nil {
		wasFavorite, gen := s.flipLocked(id)
		go s.resolve(ctx, id, wasFavorite, gen, done, out)
		return out
	}
	s.mu.Unlock()

	go func() {
		select {
		case <-prev:
		case <-ctx.Done():
			s.mu.Lock()
			_, isFavorite := s.ids[id]
			result := Result{ItemID: id, Favorited: !isFavorite, Reason: ReasonGeneric, Message: ReasonGeneric.Message(), Err: ctx.Err()}
			s.notifyLocked(func(o Observer, _ []int) { o.OnToggleFailed(result) })
			out <- result
			close(out)
			<-prev
			s.finishInflight(id, done)
			return
		}
		s.mu.Lock()
		wasFavorite, gen := s.flipLocked(id)
		s.resolve(ctx, id, wasFavorite, gen, done, out)
	}()
	return out
}

// flipLocked applies the optimistic flip. It must be called with mu held and
// releases it after queuing the change notification.
func (s *State) flipLocked(id int) (bool, uint64) {
	_, wasFavorite := s.ids[id]
	s.setLocked(id, !wasFavorite)
	gen := s.generation
	s.notifyLocked(func(o Observer, snapshot []int) { o.OnChange(snapshot) })
	return wasFavorite, gen
}

func (s *State) resolve(ctx context.Context, id int, wasFavorite bool, gen uint64, done chan struct{}, out chan<- Result) {
	defer close(out)
	if done != nil {
		defer s.finishInflight(id, done)
	}

	var err error
	if wasFavorite {
		err = s.gateway.RemoveFavorite(ctx, id)
	} else {
		err = s.gateway.AddFavorite(ctx, id)
	}

	result := Result{ItemID: id, Favorited: !wasFavorite, Err: err}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		result.Superseded = true
		result.Reason = Classify(err)
		out <- result
		return
	}

	if err == nil {
		result.Message = msgAdded
		if wasFavorite {
			result.Message = msgRemoved
		}
		s.notifyLocked(func(o Observer, _ []int) { o.OnToggleSucceeded(result) })
		out <- result
		return
	}

	result.Reason = Classify(err)
	result.Message = result.Reason.Message()
	s.setLocked(id, wasFavorite)
	s.notifyLocked(func(o Observer, snapshot []int) {
		o.OnChange(snapshot)
		o.OnToggleFailed(result)
	})
	out <- result
}

func (s *State) finishInflight(id int, done chan struct{}) {
	s.mu.Lock()
	if s.inflight[id] == done {
		delete(s.inflight, id)
	}
	s.mu.Unlock()
	close(done)
}

func (s *State) setLocked(id int, favorite bool) {
	if favorite {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
}

func (s *State) sortedIDsLocked() []int {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// notifyLocked queues fn for every current observer with a snapshot of the
// set, releases mu and dispatches. It must be called with mu held.
func (s *State) notifyLocked(fn func(o Observer, snapshot []int)) {
	snapshot := s.sortedIDsLocked()
	observers := make([]Observer, 0, len(s.observers))
	for sub := range s.observers {
		observers = append(observers, sub.observer)
	}
	s.pending = append(s.pending, func() {
		for _, o := range observers {
			fn(o, snapshot)
		}
	})
	s.mu.Unlock()
	s.dispatch()
}

// dispatch runs queued notifications until the queue is empty. Only one
// goroutine dispatches at a time; others leave their work in the queue.
func (s *State) dispatch() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.mu.Unlock()
		next()
		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}
