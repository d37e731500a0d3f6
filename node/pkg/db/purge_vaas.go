package db

import (
	"time"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

// PurgeVaas deletes every stored VAA matching prefix (see VAAID.Bytes) whose
// body timestamp is strictly older than oldestTime, returning the number of
// VAAs deleted. When log is true, each deleted key is logged at info level.
// This is operator-triggered disk cleanup, not the replay-prevention
// bookkeeping that lives in the verifier package.
func (d *Database) PurgeVaas(prefix VAAID, oldestTime time.Time, log bool) (int, error) {
	var toDelete [][]byte

	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix.Bytes()
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := append([]byte(nil), item.Key()...)

			err := item.Value(func(val []byte) error {
				v, err := vaa.Unmarshal(val)
				if err != nil {
					return err
				}
				if v.Timestamp.Before(oldestTime) {
					toDelete = append(toDelete, key)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range toDelete {
		if log {
			d.logger.Info("purging old VAA", zap.Binary("key", key))
		}
		if err := d.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		}); err != nil {
			return len(toDelete), err
		}
	}

	return len(toDelete), nil
}
