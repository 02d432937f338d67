package protocol

import "github.com/ethereum/go-ethereum/common"

// TransferOwnership reassigns the owner role. Only the current owner may
// call it.
func (l *Ledger) TransferOwnership(caller, newOwner common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}

	l.owner = newOwner
	l.emit(Event{Type: EventOwnershipTransferred, Address: newOwner})
	return nil
}

// AddProvider grants an address permission to submit posts and request
// scoring. Adding an existing provider is a silent no-op: no error, no
// duplicate event.
func (l *Ledger) AddProvider(caller, addr common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}

	if l.providers[addr] {
		return nil
	}

	l.providers[addr] = true
	l.emit(Event{Type: EventProviderAdded, Address: addr})
	return nil
}

// RemoveProvider revokes an address's provider role. Removing a non-provider
// is a silent no-op.
func (l *Ledger) RemoveProvider(caller, addr common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}

	if !l.providers[addr] {
		return nil
	}

	delete(l.providers, addr)
	l.emit(Event{Type: EventProviderRemoved, Address: addr})
	return nil
}

// requireProvider gates provider-only entry points. Callers hold l.mu.
func (l *Ledger) requireProvider(caller common.Address) error {
	if !l.providers[caller] {
		return ErrNotProvider
	}
	return nil
}
