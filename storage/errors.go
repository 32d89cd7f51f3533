package storage

import "errors"

var (
	ErrNotFound        = errors.New("storage: record not found")
	ErrAlreadyExists   = errors.New("storage: record already exists")
	ErrAlreadyConsumed = errors.New("storage: record already consumed")
	ErrInvalidRecord   = errors.New("storage: invalid record")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

func IsAlreadyConsumed(err error) bool { return errors.Is(err, ErrAlreadyConsumed) }

func IsInvalidRecord(err error) bool { return errors.Is(err, ErrInvalidRecord) }
