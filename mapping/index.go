package mapping

import (
	"encoding/binary"
	"fmt"
	"path"

	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/storage/badger"
	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/coocood/freecache"
)

const (
	metaKeyName    = "meta"
	labelKeyPrefix = 'L'
)

// Index serves label maps from a badger database so consumers do not have to load
// every label's map.  Recently used maps are kept in an optional freecache.
type Index struct {
	db        *badger.DB
	namespace []byte

	coarse   thinning.GridShape
	fine     thinning.GridShape
	maxLabel int64

	cache *freecache.Cache
}

func indexNamespace(prefix string, res thinning.Resolution) []byte {
	return []byte(path.Join(prefix, storage.ResolutionTag(res)) + "/")
}

func metaKey(namespace []byte) []byte {
	key := make([]byte, 0, len(namespace)+len(metaKeyName))
	key = append(key, namespace...)
	return append(key, metaKeyName...)
}

func labelKey(namespace []byte, label uint64) []byte {
	key := make([]byte, len(namespace)+9)
	copy(key, namespace)
	key[len(namespace)] = labelKeyPrefix
	binary.BigEndian.PutUint64(key[len(namespace)+1:], label)
	return key
}

// BuildIndex replaces any index for the prefix and resolution with the given
// correspondence.
func BuildIndex(db *badger.DB, prefix string, res thinning.Resolution, c *Correspondence) error {
	ns := indexNamespace(prefix, res)
	if err := db.DeletePrefix(ns); err != nil {
		return fmt.Errorf("unable to clear index %s: %v", ns, err)
	}
	timedLog := thinning.NewTimeLog()
	batch := db.NewBatch()
	labels := c.Labels()
	for _, label := range labels {
		coarse, fine := c.Elements(label)
		if err := batch.Put(labelKey(ns, label), encodeLabelMap(coarse, fine)); err != nil {
			batch.Cancel()
			return fmt.Errorf("unable to index label %d: %v", label, err)
		}
	}
	if err := batch.Put(metaKey(ns), encodeMeta(c)); err != nil {
		batch.Cancel()
		return err
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	timedLog.Infof("Indexed %d labels for %s in %s", len(labels), ns, db)
	return nil
}

// OpenIndex returns the index for a prefix and resolution previously stored with
// BuildIndex.  If cacheBytes is positive, decoded label maps are cached.
func OpenIndex(db *badger.DB, prefix string, res thinning.Resolution, cacheBytes int) (*Index, error) {
	ns := indexNamespace(prefix, res)
	meta, err := db.Get(metaKey(ns))
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("no index for %s in %s: %w", ns, db, storage.ErrNotFound)
	}
	idx := &Index{db: db, namespace: ns}
	if err := idx.decodeMeta(meta); err != nil {
		return nil, err
	}
	if cacheBytes > 0 {
		idx.cache = freecache.NewCache(cacheBytes)
		thinning.Infof("Created freecache of ~ %d MB for index %s.\n", cacheBytes>>20, ns)
	}
	return idx, nil
}

func (idx *Index) CoarseShape() thinning.GridShape {
	return idx.coarse
}

func (idx *Index) FineShape() thinning.GridShape {
	return idx.fine
}

// MaxLabel returns one more than the largest label of the indexed correspondence.
func (idx *Index) MaxLabel() int64 {
	return idx.maxLabel
}

// LabelMap returns the map for a label, consulting the cache first.
func (idx *Index) LabelMap(label uint64) (LabelMap, error) {
	key := labelKey(idx.namespace, label)
	var data []byte
	var err error
	if idx.cache != nil {
		data, err = idx.cache.Get(key)
		if err != nil && err != freecache.ErrNotFound {
			return nil, err
		}
	}
	if data == nil {
		if data, err = idx.db.Get(key); err != nil {
			return nil, err
		}
		if data == nil {
			return LabelMap{}, nil
		}
		if idx.cache != nil {
			if err := idx.cache.Set(key, data, 0); err != nil {
				thinning.Errorf("unable to cache label %d map for %s: %v\n", label, idx.namespace, err)
			}
		}
	}
	return decodeLabelMap(data)
}

// CacheHitRate returns the fraction of label map lookups served from the cache.
func (idx *Index) CacheHitRate() float64 {
	if idx.cache == nil {
		return 0
	}
	return idx.cache.HitRate()
}

func encodeMeta(c *Correspondence) []byte {
	b := make([]byte, 7*8)
	for axis := 0; axis < 3; axis++ {
		binary.LittleEndian.PutUint64(b[axis*8:], uint64(c.Coarse[axis]))
		binary.LittleEndian.PutUint64(b[(axis+3)*8:], uint64(c.Fine[axis]))
	}
	binary.LittleEndian.PutUint64(b[48:], uint64(c.MaxLabel))
	return b
}

func (idx *Index) decodeMeta(b []byte) error {
	if len(b) != 7*8 {
		return fmt.Errorf("bad index metadata for %s: %d bytes", idx.namespace, len(b))
	}
	for axis := 0; axis < 3; axis++ {
		idx.coarse[axis] = int64(binary.LittleEndian.Uint64(b[axis*8:]))
		idx.fine[axis] = int64(binary.LittleEndian.Uint64(b[(axis+3)*8:]))
	}
	idx.maxLabel = int64(binary.LittleEndian.Uint64(b[48:]))
	return nil
}

// encodeLabelMap serializes (coarse, fine) pairs as little-endian int64.
func encodeLabelMap(coarse, fine []int64) []byte {
	b := make([]byte, 16*len(coarse))
	for i := range coarse {
		binary.LittleEndian.PutUint64(b[i*16:], uint64(coarse[i]))
		binary.LittleEndian.PutUint64(b[i*16+8:], uint64(fine[i]))
	}
	return b
}

func decodeLabelMap(b []byte) (LabelMap, error) {
	if len(b)%16 != 0 {
		return nil, fmt.Errorf("bad label map encoding of %d bytes", len(b))
	}
	m := make(LabelMap, len(b)/16)
	for i := 0; i < len(b); i += 16 {
		coarse := int64(binary.LittleEndian.Uint64(b[i:]))
		m[coarse] = int64(binary.LittleEndian.Uint64(b[i+8:]))
	}
	return m, nil
}
