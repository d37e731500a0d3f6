// Package db persists signed VAAs and guardian-set rosters in a local
// badger key-value store, the same embedded-database choice the guardian
// node has always used for its on-disk state.
package db

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// Database wraps a badger instance storing signed VAAs keyed by
// (emitter_chain, emitter_address, sequence) and guardian-set rosters keyed
// by index.
type Database struct {
	db     *badger.DB
	logger *zap.Logger
}

// VAAID is the (emitter_chain, emitter_address, sequence) primary key a
// stored VAA is addressed by. A zero Sequence with EmitterAddress unset acts
// as a prefix when used with PurgeVaas.
type VAAID struct {
	EmitterChain   vaa.ChainID
	EmitterAddress vaa.Address
	Sequence       uint64
}

const (
	vaaKeyPrefix         = "vaa/"
	guardianSetKeyPrefix = "gs/"
)

// Bytes returns the lexicographically-ordered key this ID is stored under.
// A VAAID with a zero Sequence and only EmitterChain set (EmitterAddress
// zero) forms a prefix matching every VAA for that chain; adding
// EmitterAddress narrows the prefix to a single emitter.
func (id *VAAID) Bytes() []byte {
	buf := []byte(vaaKeyPrefix)
	var chainBuf [2]byte
	binary.BigEndian.PutUint16(chainBuf[:], uint16(id.EmitterChain))
	buf = append(buf, chainBuf[:]...)

	if id.EmitterAddress == (vaa.Address{}) && id.Sequence == 0 {
		return buf
	}
	buf = append(buf, id.EmitterAddress[:]...)

	if id.Sequence == 0 {
		return buf
	}
	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], id.Sequence)
	return append(buf, seqBuf[:]...)
}

func vaaIDFromVAA(v *vaa.VAA) VAAID {
	return VAAID{EmitterChain: v.EmitterChain, EmitterAddress: v.EmitterAddress, Sequence: v.Sequence}
}

// Open opens (creating if necessary) the badger database rooted at path.
func Open(path string) (*Database, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	return &Database{db: bdb, logger: zap.NewNop()}, nil
}

// SetLogger attaches a logger used for diagnostic messages during purges.
func (d *Database) SetLogger(logger *zap.Logger) {
	d.logger = logger
}

// Close releases the underlying badger handle.
func (d *Database) Close() error {
	return d.db.Close()
}

// StoreSignedVAA persists v under its (emitter_chain, emitter_address,
// sequence) key. Writing is idempotent: storing the same bytes twice is a
// no-op, and badger's transactional writer makes concurrent writers to
// distinct keys linearizable per key.
func (d *Database) StoreSignedVAA(v *vaa.VAA) error {
	id := vaaIDFromVAA(v)
	b, err := v.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal VAA for storage: %w", err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(id.Bytes(), b)
	})
}

// HasVAA reports whether a VAA is stored under id.
func (d *Database) HasVAA(id VAAID) (bool, error) {
	found := false
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(id.Bytes())
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// GetSignedVAA retrieves and parses the VAA stored under id, if present.
func (d *Database) GetSignedVAA(id VAAID) (*vaa.VAA, error) {
	var raw []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(id.Bytes())
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vaa.Unmarshal(raw)
}

// StoreGuardianSet persists a guardian-set roster keyed by its index.
func (d *Database) StoreGuardianSet(gs *common.GuardianSet) error {
	key := guardianSetKey(gs.Index)
	buf := encodeGuardianSet(gs)
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

// GetGuardianSet retrieves the guardian set stored under index, if present.
func (d *Database) GetGuardianSet(index uint32) (*common.GuardianSet, error) {
	var raw []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(guardianSetKey(index))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeGuardianSet(raw)
}

func guardianSetKey(index uint32) []byte {
	buf := []byte(guardianSetKeyPrefix)
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], index)
	return append(buf, idxBuf[:]...)
}
