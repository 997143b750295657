package models

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// размещение
	ErrAlreadyPlaced       = errors.New("member is already placed")
	ErrNoSponsor           = errors.New("no sponsor to place under")
	ErrSlotNotFound        = errors.New("no open slot in tree")
	ErrConcurrentPlacement = errors.New("slot was taken by a concurrent placement")

	// хранилища
	ErrLedgerConflict   = errors.New("ledger entry already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrVersionConflict  = errors.New("member was modified concurrently")
	ErrCheckpointMoved  = errors.New("propagation checkpoint was moved by another run")
	ErrDuplicate        = errors.New("document already exists")

	// администрирование
	ErrInvalidPin          = errors.New("pin does not belong to member")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoPins              = errors.New("no unused pins available")
	ErrInvalidStatus       = errors.New("request is not pending")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
)
