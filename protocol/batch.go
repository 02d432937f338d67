package protocol

import "github.com/ethereum/go-ethereum/common"

// OpenBatch opens a new submission window. Only the owner may call it, only
// while not paused, and only when no batch is open. The batch id increments
// on each open.
func (l *Ledger) OpenBatch(caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}
	if l.paused {
		return ErrPaused
	}
	if l.batch.Open {
		return ErrInvalidBatchState
	}

	l.batch = Batch{ID: l.batch.ID + 1, Open: true}
	l.emit(Event{Type: EventBatchOpened, BatchID: l.batch.ID})
	return nil
}

// CloseBatch closes the current submission window. The batch id is retained
// for audit; only the owner may call it, only while not paused, and only
// when a batch is open.
func (l *Ledger) CloseBatch(caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}
	if l.paused {
		return ErrPaused
	}
	if !l.batch.Open {
		return ErrInvalidBatchState
	}

	l.batch.Open = false
	l.emit(Event{Type: EventBatchClosed, BatchID: l.batch.ID})
	return nil
}

// Pause gates all mutating operations. Pause itself runs under the
// not-paused guard, so pausing twice fails with ErrPaused.
func (l *Ledger) Pause(caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}
	if l.paused {
		return ErrPaused
	}

	l.paused = true
	l.emit(Event{Type: EventPaused})
	return nil
}

// Unpause lifts the pause gate. It carries no pause guard itself: unpausing
// an unpaused ledger succeeds as a no-op without a duplicate event.
func (l *Ledger) Unpause(caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}
	if !l.paused {
		return nil
	}

	l.paused = false
	l.emit(Event{Type: EventUnpaused})
	return nil
}
