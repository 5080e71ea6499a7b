// Package rendercache stores encoded images on disk, keyed by a digest of
// everything that determines their content.
package rendercache

import (
	"crypto/sha256"
	"encoding/binary"
	"os"

	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"golang.org/x/xerrors"
)

const keyPrefix = "render/v1/"

// Key digests parts into a cache key.  Each part is length-prefixed, so
// ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return h.Sum([]byte(keyPrefix))
}

type Cache struct {
	DB *badger.DB
}

// Open opens (creating if needed) the cache in dataDir.  If clear is set, any
// existing contents are discarded first.
func Open(dataDir string, clear bool) (*Cache, error) {
	if clear {
		if err := os.RemoveAll(dataDir); err != nil {
			return nil, xerrors.Errorf("while clearing data dir %q: %w", dataDir, err)
		}
	}

	db, err := badger.Open(badger.DefaultOptions(dataDir).WithLogger(glogLogger{}))
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir: %w", err)
	}

	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing database: %w", err)
	}
	return nil
}

// Get returns the value stored under key, and whether there was one.
func (c *Cache) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if xerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, xerrors.Errorf("while reading key %x: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (c *Cache) Put(key, value []byte) error {
	for {
		err := c.DB.Update(func(txn *badger.Txn) error {
			return txn.Set(key, value)
		})
		if xerrors.Is(err, badger.ErrConflict) {
			continue
		} else if err != nil {
			return xerrors.Errorf("while writing key %x: %w", key, err)
		}
		return nil
	}
}

// glogLogger routes badger's logs to glog.  Debug output needs -v=2.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func (glogLogger) Infof(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
}

func (glogLogger) Debugf(format string, args ...interface{}) {
	glog.V(2).Infof(format, args...)
}
