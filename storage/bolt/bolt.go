// Package bolt is a storage.Storage that uses BoltDB.
//
// Each automaton gets its own bucket.  Keys are big-endian
// nanosecond timestamps followed by the bucket's sequence number, so
// a cursor visits runs in the order they happened.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Comcast/automata/storage"

	bolt "go.etcd.io/bbolt"
)

var NotOpen = errors.New("storage not open")

type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return NotOpen
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func key(at time.Time, seq uint64) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k, uint64(at.UnixNano()))
	binary.BigEndian.PutUint64(k[8:], seq)
	return k
}

func (s *Storage) Record(ctx context.Context, r *storage.Run) error {
	if s.db == nil {
		return NotOpen
	}
	s.logf("Record %s %v", r.Automaton, r.Input)

	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(r.Automaton))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		k := key(r.At, seq)

		// To save some space, don't store the id.
		c := *r
		c.Id = ""
		js, err := json.Marshal(&c)
		if err != nil {
			return err
		}
		if err = b.Put(k, js); err != nil {
			return err
		}
		r.Id = hex.EncodeToString(k)
		return nil
	})
}

func (s *Storage) Runs(ctx context.Context, automaton string, limit int) ([]*storage.Run, error) {
	if s.db == nil {
		return nil, NotOpen
	}
	s.logf("Runs %s %d", automaton, limit)

	runs := make([]*storage.Run, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(automaton))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		// Walk backwards to find the most recent limit runs.
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r storage.Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			r.Id = hex.EncodeToString(k)
			runs = append(runs, &r)
			if 0 < limit && limit <= len(runs) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}

	s.logf("Runs %s found %d", automaton, len(runs))

	return runs, nil
}

func (s *Storage) Prune(ctx context.Context, before time.Time) (int, error) {
	if s.db == nil {
		return 0, NotOpen
	}
	s.logf("Prune %s", before)

	limit := key(before, 0)
	n := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		var empty [][]byte
		err := tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			var doomed [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil && bytes.Compare(k, limit) < 0; k, _ = c.Next() {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			for _, k := range doomed {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			n += len(doomed)
			if k, _ := c.First(); k == nil {
				empty = append(empty, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range empty {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logf("Prune removed %d", n)

	return n, nil
}
