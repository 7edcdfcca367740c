package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Txn is one unit of work. Writes go to an indexed batch, so reads made
// through the Txn observe the batch's own uncommitted writes.
type Txn struct {
	r reader
	b *pebble.Batch
}

func mapPebbleErr(err error) error {
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (t *Txn) getJSON(key []byte, v any) error {
	data, closer, err := t.r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get %q: %w", key, err)
	}
	defer closer.Close()

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (t *Txn) setJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return t.b.Set(key, data, nil)
}

func (t *Txn) set(key, value []byte) error {
	return t.b.Set(key, value, nil)
}

func (t *Txn) delete(key []byte) error {
	return t.b.Delete(key, nil)
}

func (t *Txn) exists(key []byte) (bool, error) {
	_, closer, err := t.r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	_ = closer.Close()
	return true, nil
}

// forEach visits every key/value under prefix in key order. The value
// slice passed to fn is only valid for the duration of the call.
func (t *Txn) forEach(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := t.r.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("iterator: %w", err)
	}
	defer iter.Close()

	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (t *Txn) countPrefix(prefix []byte) (int, error) {
	n := 0
	err := t.forEach(prefix, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}
