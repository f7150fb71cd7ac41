package store

import (
	"errors"
	"fmt"
)

// ErrNoKey is returned when a record without a key is staged for update or delete.
var ErrNoKey = errors.New("record has no key")

// Changeset holds staged, uncommitted changes in the order they were made.
type Changeset struct {
	inserts []Record
	updates []Record
	deletes []string
}

// Insert stages rec, assigning a key if it has none.
func (c *Changeset) Insert(rec Record) (Record, error) {
	if rec.Key == "" {
		rec.Key = NewRecord(nil).Key
	}
	for _, r := range c.inserts {
		if r.Key == rec.Key {
			return Record{}, fmt.Errorf("insert: duplicate key %s", rec.Key)
		}
	}
	rec = rec.Clone()
	c.inserts = append(c.inserts, rec)
	return rec, nil
}

// Update stages an overwrite of rec. A pending insert with the same key is
// rewritten in place instead.
func (c *Changeset) Update(rec Record) error {
	if rec.Key == "" {
		return ErrNoKey
	}
	rec = rec.Clone()
	for i, r := range c.inserts {
		if r.Key == rec.Key {
			c.inserts[i] = rec
			return nil
		}
	}
	for i, r := range c.updates {
		if r.Key == rec.Key {
			c.updates[i] = rec
			return nil
		}
	}
	c.updates = append(c.updates, rec)
	return nil
}

// Delete stages removal of the record with key. Pending inserts and updates
// for that key are dropped.
func (c *Changeset) Delete(key string) error {
	if key == "" {
		return ErrNoKey
	}
	for i, r := range c.inserts {
		if r.Key == key {
			c.inserts = append(c.inserts[:i], c.inserts[i+1:]...)
			return nil
		}
	}
	for i, r := range c.updates {
		if r.Key == key {
			c.updates = append(c.updates[:i], c.updates[i+1:]...)
			break
		}
	}
	for _, k := range c.deletes {
		if k == key {
			return nil
		}
	}
	c.deletes = append(c.deletes, key)
	return nil
}

func (c *Changeset) Inserts() []Record { return c.inserts }
func (c *Changeset) Updates() []Record { return c.updates }
func (c *Changeset) Deletes() []string { return c.deletes }

// Empty reports whether nothing is staged.
func (c *Changeset) Empty() bool {
	return len(c.inserts) == 0 && len(c.updates) == 0 && len(c.deletes) == 0
}

// Reset discards everything staged.
func (c *Changeset) Reset() {
	c.inserts, c.updates, c.deletes = nil, nil, nil
}

// Apply overlays the staged changes on committed and returns a new slice.
// Updates and deletes for keys not in committed are ignored; inserts are
// appended in staging order.
func (c *Changeset) Apply(committed []Record) []Record {
	deleted := make(map[string]bool, len(c.deletes))
	for _, k := range c.deletes {
		deleted[k] = true
	}
	updated := make(map[string]Record, len(c.updates))
	for _, r := range c.updates {
		updated[r.Key] = r
	}

	out := make([]Record, 0, len(committed)+len(c.inserts))
	for _, r := range committed {
		if deleted[r.Key] {
			continue
		}
		if u, ok := updated[r.Key]; ok {
			r = u
		}
		out = append(out, r.Clone())
	}
	for _, r := range c.inserts {
		out = append(out, r.Clone())
	}
	return out
}
