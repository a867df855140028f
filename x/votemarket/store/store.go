// Package store journals encoded submissions in LevelDB, keyed so the
// backfill runner can ask which epochs a gauge already has proofs for.
// An empty path opens an in-memory database for tests and dry runs.
package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/stake-dao/votemarket-relay/x/votemarket/epoch"
	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
)

// Key layout. Epochs are fixed-width so lexicographic iteration is
// numeric iteration.
//
//	s/<protocol>/<gauge>/<epoch %020d>          gauge submission
//	u/<protocol>/<gauge>/<user>/<epoch %020d>   user submission
const (
	gaugePrefix = "s"
	userPrefix  = "u"
)

// Record wraps a journaled submission with its write time.
type Record struct {
	Submission *proofs.Submission `json:"submission"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Store is safe for concurrent use; LevelDB serializes writes itself.
type Store struct {
	db  *leveldb.DB
	log zerolog.Logger
}

// Open opens or creates the journal at path. An empty path uses
// in-memory storage.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open submission store at %q: %w", path, err)
	}

	return &Store{
		db:  db,
		log: logger.With().Str("component", "store").Logger(),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutSubmission journals one encoded submission under its gauge key,
// or its user key when the submission proves a voter's slopes.
func (s *Store) PutSubmission(sub *proofs.Submission) error {
	if sub == nil {
		return fmt.Errorf("store: nil submission")
	}
	rec := Record{Submission: sub, CreatedAt: time.Now().UTC()}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode record: %w", err)
	}

	key := gaugeKey(sub.Protocol, sub.Gauge, sub.Epoch)
	if sub.User != nil {
		key = userKey(sub.Protocol, sub.Gauge, *sub.User, sub.Epoch)
	}
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Msg("submission journaled")
	return nil
}

// GetSubmission returns the gauge submission for an epoch. The second
// return is false when no record exists.
func (s *Store) GetSubmission(protocol string, gauge common.Address, ep uint64) (*Record, bool, error) {
	return s.get(gaugeKey(protocol, gauge, ep))
}

// GetUserSubmission returns the voter submission for an epoch.
func (s *Store) GetUserSubmission(protocol string, gauge, user common.Address, ep uint64) (*Record, bool, error) {
	return s.get(userKey(protocol, gauge, user, ep))
}

func (s *Store) get(key string) (*Record, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, false, fmt.Errorf("store: decode record %s: %w", key, err)
	}
	return &rec, true, nil
}

// ProcessedEpochs builds the set of epochs a gauge already has
// journaled submissions for, starting the set at start.
func (s *Store) ProcessedEpochs(protocol string, gauge common.Address, start uint64) (*epoch.Set, error) {
	set := epoch.NewSet(start)
	prefix := gaugeKey(protocol, gauge, 0)
	prefix = prefix[:strings.LastIndexByte(prefix, '/')+1]

	err := s.scan(prefix, func(key string, _ []byte) error {
		ep, err := epochFromKey(key)
		if err != nil {
			return err
		}
		if ep >= set.Start() {
			set.Add(ep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ListSubmissions returns a gauge's journaled submissions in epoch
// order.
func (s *Store) ListSubmissions(protocol string, gauge common.Address) ([]*Record, error) {
	prefix := gaugeKey(protocol, gauge, 0)
	prefix = prefix[:strings.LastIndexByte(prefix, '/')+1]

	var out []*Record
	err := s.scan(prefix, func(key string, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("store: decode record %s: %w", key, err)
		}
		out = append(out, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stats counts journaled records by kind.
type Stats struct {
	GaugeSubmissions int `json:"gauge_submissions"`
	UserSubmissions  int `json:"user_submissions"`
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.scan(gaugePrefix+"/", func(string, []byte) error {
		st.GaugeSubmissions++
		return nil
	}); err != nil {
		return Stats{}, err
	}
	if err := s.scan(userPrefix+"/", func(string, []byte) error {
		st.UserSubmissions++
		return nil
	}); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// scan visits every record under prefix in key order. Key and value
// bytes are copied before the callback runs.
func (s *Store) scan(prefix string, visit func(key string, value []byte) error) error {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	p := []byte(prefix)
	for ok := iter.Seek(p); ok; ok = iter.Next() {
		key := iter.Key()
		if !hasPrefix(key, p) {
			break
		}
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if err := visit(string(key), value); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("store: scan %s: %w", prefix, err)
	}
	return nil
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

func gaugeKey(protocol string, gauge common.Address, ep uint64) string {
	return fmt.Sprintf("%s/%s/%s/%020d", gaugePrefix, strings.ToLower(protocol), strings.ToLower(gauge.Hex()), ep)
}

func userKey(protocol string, gauge, user common.Address, ep uint64) string {
	return fmt.Sprintf("%s/%s/%s/%s/%020d", userPrefix, strings.ToLower(protocol), strings.ToLower(gauge.Hex()), strings.ToLower(user.Hex()), ep)
}

func epochFromKey(key string) (uint64, error) {
	i := strings.LastIndexByte(key, '/')
	if i < 0 || i+1 >= len(key) {
		return 0, fmt.Errorf("store: malformed key %s", key)
	}
	ep, err := strconv.ParseUint(key[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store: malformed epoch in key %s: %w", key, err)
	}
	return ep, nil
}
