// Package archive stores finished bootstrap ensembles in a bolt
// database.
package archive

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/mtcat/bootstrap"
)

// log is the global logging variable.
var log = logging.MustGetLogger("archive")

// ENSEMBLES is the bucket name for all ensembles.
var ENSEMBLES = []byte("ensembles")

// Entry is a stored ensemble.
type Entry struct {
	Saved    time.Time           `json:"saved"`
	Seed     int64               `json:"seed"`
	Ensemble *bootstrap.Ensemble `json:"ensemble"`
}

// Archive provides access to the stored ensembles.
type Archive struct {
	db *bolt.DB
}

// Open opens or creates the archive file.
func Open(path string) (*Archive, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Key returns the database key for model and label.
func Key(model, label string) []byte {
	return []byte(model + "/" + label)
}

// Save stores the ensemble under the model and label.
func (a *Archive) Save(label string, seed int64, e *bootstrap.Ensemble) error {
	if e.Model == "" {
		return fmt.Errorf("cannot store ensemble of mixed models (%s)", label)
	}
	b, err := json.Marshal(&Entry{
		Saved:    time.Now(),
		Seed:     seed,
		Ensemble: e,
	})
	if err != nil {
		log.Error("Error serializing ensemble", err)
		return err
	}
	key := Key(e.Model, label)
	if err := SaveData(a.db, key, b); err != nil {
		log.Error("Error saving ensemble", err)
		return err
	}
	log.Infof("Saved %d records as %s", e.Len(), key)
	return nil
}

// Load returns the stored entry, or nil if there is none.
func (a *Archive) Load(model, label string) (*Entry, error) {
	b, err := LoadData(a.db, Key(model, label))
	if err != nil || b == nil {
		return nil, err
	}
	var entry *Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, err
	}
	if entry == nil || entry.Ensemble == nil {
		return nil, nil
	}
	log.Noticef("Found stored ensemble %s/%s (%d records, saved %v)",
		model, label, entry.Ensemble.Len(), entry.Saved.Format(time.RFC3339))
	return entry, nil
}

// Keys returns the stored keys, sorted.
func (a *Archive) Keys() (keys []string, err error) {
	err = a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ENSEMBLES)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	sort.Strings(keys)
	return
}

// SplitKey splits a database key into model and label.
func SplitKey(key string) (model, label string) {
	i := strings.IndexByte(key, '/')
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(ENSEMBLES)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ENSEMBLES)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
