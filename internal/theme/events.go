package theme

import "github.com/bnema/shade/internal/domain/entity"

// changeSub wraps a state callback so it can be removed by pointer identity.
type changeSub struct {
	fn func(entity.State)
}

// transitionSub wraps a transition callback for the same reason.
type transitionSub struct {
	fn func(bool)
}

// OnChange registers a callback invoked with a state snapshot every time a
// resolution commits. Callbacks fire in registration order. The returned
// function unregisters the callback.
func (r *Resolver) OnChange(fn func(entity.State)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &changeSub{fn: fn}
	r.changeSubs = append(r.changeSubs, sub)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.changeSubs {
			if s == sub {
				r.changeSubs = append(r.changeSubs[:i], r.changeSubs[i+1:]...)
				return
			}
		}
	}
}

// OnTransition registers a callback invoked with the transitioning flag
// whenever it flips. The returned function unregisters the callback.
func (r *Resolver) OnTransition(fn func(bool)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &transitionSub{fn: fn}
	r.transitionSubs = append(r.transitionSubs, sub)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.transitionSubs {
			if s == sub {
				r.transitionSubs = append(r.transitionSubs[:i], r.transitionSubs[i+1:]...)
				return
			}
		}
	}
}

// notifyChangeLocked enqueues a snapshot and drains the queue in commit
// order, firing callbacks outside the lock. Only one caller drains at a
// time: a commit that lands while callbacks are running queues behind them
// instead of interleaving, so subscribers always observe snapshots in the
// order they committed. Caller must hold mu; the lock is held again on
// return. Dispatch stops once the resolver is closed.
func (r *Resolver) notifyChangeLocked(snap entity.State) {
	r.notifyQueue = append(r.notifyQueue, snap)
	if r.notifying {
		return
	}
	r.notifying = true

	for len(r.notifyQueue) > 0 && !r.closed {
		next := r.notifyQueue[0]
		r.notifyQueue = r.notifyQueue[1:]

		subs := make([]*changeSub, len(r.changeSubs))
		copy(subs, r.changeSubs)

		r.mu.Unlock()
		for _, sub := range subs {
			sub.fn(next)
		}
		r.mu.Lock()
	}

	r.notifying = false
	r.notifyQueue = nil
}

// notifyTransitionLocked fires transition callbacks outside the lock. Caller
// must hold mu; the lock is held again on return.
func (r *Resolver) notifyTransitionLocked(active bool) {
	subs := make([]*transitionSub, len(r.transitionSubs))
	copy(subs, r.transitionSubs)

	r.mu.Unlock()
	for _, sub := range subs {
		sub.fn(active)
	}
	r.mu.Lock()
}
