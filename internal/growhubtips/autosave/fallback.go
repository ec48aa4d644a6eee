package autosave

import (
	"github.com/boltdb/bolt"
)

const fallbackBucketName = "autosave"

// BoltFallback - резервное хранилище автосохранения на BoltDB.
// Полезная нагрузка хранится по идентификатору документа и переживает
// перезапуск сервера.
type BoltFallback struct {
	db *bolt.DB
}

// NewBoltFallback открывает файл резерва и готовит bucket.
func NewBoltFallback(path string) (*BoltFallback, error) {
	if path == "" {
		path = "autosave.db"
	}

	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(fallbackBucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltFallback{db}, nil
}

func (f *BoltFallback) Store(docID string, payload []byte) error {
	return f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(fallbackBucketName)).Put([]byte(docID), payload)
	})
}

func (f *BoltFallback) Load(docID string) ([]byte, bool, error) {
	var payload []byte
	err := f.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(fallbackBucketName)).Get([]byte(docID))
		if raw != nil {
			payload = make([]byte, len(raw))
			copy(payload, raw)
		}
		return nil
	})
	return payload, payload != nil, err
}

func (f *BoltFallback) Delete(docID string) error {
	return f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(fallbackBucketName)).Delete([]byte(docID))
	})
}

// Keys возвращает идентификаторы документов, лежащих в резерве.
// Используется чисткой устаревших записей.
func (f *BoltFallback) Keys() ([]string, error) {
	var keys []string
	err := f.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(fallbackBucketName)).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

func (f *BoltFallback) Close() {
	f.db.Close()
}
