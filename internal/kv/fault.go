package kv

import (
	"context"
	"sync"
)

// FaultStore wraps a Store and fails selected operations on demand.
// It exists to exercise error paths in callers.
type FaultStore struct {
	Store

	mu        sync.Mutex
	getErr    error
	setErr    error
	removeErr error
	sets      int
}

// NewFaultStore wraps inner.
func NewFaultStore(inner Store) *FaultStore {
	return &FaultStore{Store: inner}
}

// FailGet makes subsequent Get calls return err. A nil err clears the fault.
func (f *FaultStore) FailGet(err error) {
	f.mu.Lock()
	f.getErr = err
	f.mu.Unlock()
}

// FailSet makes subsequent Set calls return err.
func (f *FaultStore) FailSet(err error) {
	f.mu.Lock()
	f.setErr = err
	f.mu.Unlock()
}

// FailRemove makes subsequent Remove calls return err.
func (f *FaultStore) FailRemove(err error) {
	f.mu.Lock()
	f.removeErr = err
	f.mu.Unlock()
}

// Sets returns the number of Set calls that reached the inner store.
func (f *FaultStore) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func (f *FaultStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return f.Store.Get(ctx, key)
}

func (f *FaultStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	err := f.setErr
	if err == nil {
		f.sets++
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FaultStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	err := f.removeErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Remove(ctx, key)
}
