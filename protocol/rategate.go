package protocol

import "github.com/ethereum/go-ethereum/common"

// SetCooldown updates the shared cooldown duration for both action classes.
// Only the owner may call it; zero disables the gate. Per-address last-action
// clocks are unaffected.
func (l *Ledger) SetCooldown(caller common.Address, seconds uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}

	l.cooldownSeconds = seconds
	l.emit(Event{Type: EventCooldownChanged, Cooldown: seconds})
	return nil
}

// checkCooldown rejects an action of the given class unless
// now >= last + cooldownSeconds. Exactly at the boundary the action is
// allowed. Callers hold l.mu.
func (l *Ledger) checkCooldown(addr common.Address, class ActionClass, now int64) error {
	if l.cooldownSeconds == 0 {
		return nil
	}

	last, ok := l.lastAction[cooldownKey{addr, class}]
	if !ok {
		return nil
	}

	if now < last+int64(l.cooldownSeconds) {
		return ErrCooldownActive
	}
	return nil
}

// bumpCooldown records the action timestamp. It runs atomically with the
// gated action: callers hold l.mu and only bump after every other check has
// passed.
func (l *Ledger) bumpCooldown(addr common.Address, class ActionClass, now int64) {
	l.lastAction[cooldownKey{addr, class}] = now
}
