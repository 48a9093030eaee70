package ledger

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

var (
	metaBucket = []byte("meta")
	schemaKey  = []byte("schema")
)

// BoltLedger implements Ledger on a bbolt file.
type BoltLedger struct {
	db   *bolt.DB
	path string
}

// OpenBolt opens or creates the ledger file at path.
func OpenBolt(path string) (*BoltLedger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt ledger: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}

		if v := meta.Get(schemaKey); v != nil {
			return execreduce.CheckCompatibleVersion(string(v), SchemaVersion)
		}
		return meta.Put(schemaKey, []byte(SchemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger %s: %w", path, err)
	}

	return &BoltLedger{db: db, path: path}, nil
}

func (l *BoltLedger) Record(r ChunkResult) error {
	data, err := encodeResult(r)
	if err != nil {
		return err
	}

	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(r.Phase))
		if err != nil {
			return err
		}
		return b.Put(indexKey(r.Index), data)
	})
}

func (l *BoltLedger) Results(phase string) ([]ChunkResult, error) {
	var results []ChunkResult

	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(phase))
		if b == nil {
			return nil
		}

		// Keys are big-endian indexes, so cursor order is chunk order.
		return b.ForEach(func(_, v []byte) error {
			r, err := decodeResult(v)
			if err != nil {
				return err
			}
			results = append(results, r)
			return nil
		})
	})

	return results, err
}

func (l *BoltLedger) Path() string {
	return l.path
}

func (l *BoltLedger) Close() error {
	return l.db.Close()
}
