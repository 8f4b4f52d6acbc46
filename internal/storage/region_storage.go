package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/gzip"
)

// RegionStorage представляет собой хранилище дельт регионов.
// Сохраняются только изменённые блоки, а не весь регион, поэтому
// сгенерированный ландшафт восстанавливается генератором по сиду.
type RegionStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// RegionDelta содержит накопленные изменения региона
type RegionDelta struct {
	Name        string                `json:"name"`
	BlockDeltas map[string]BlockDelta `json:"blocks"` // Ключ - упакованные координаты "x:y:z"
}

// BlockDelta содержит изменения блока
type BlockDelta struct {
	ID      world.BlockID          `json:"id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NewRegionStorage создает новое хранилище регионов
func NewRegionStorage(dataPath string) (*RegionStorage, error) {
	dbPath := filepath.Join(dataPath, "regions")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &RegionStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает хранилище данных
func (rs *RegionStorage) Close() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if !rs.isReady {
		return nil
	}

	rs.isReady = false
	return rs.db.Close()
}

// packPos упаковывает координаты в строковый ключ дельты
func packPos(pos vec.Vec3) string {
	return fmt.Sprintf("%d:%d:%d", pos.X, pos.Y, pos.Z)
}

// unpackPos разбирает строковый ключ дельты обратно в координаты
func unpackPos(key string) (vec.Vec3, error) {
	var pos vec.Vec3
	if _, err := fmt.Sscanf(key, "%d:%d:%d", &pos.X, &pos.Y, &pos.Z); err != nil {
		return vec.Vec3{}, fmt.Errorf("ошибка парсинга ключа %q: %w", key, err)
	}
	return pos, nil
}

// compress сжимает сериализованную дельту перед записью
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("ошибка сжатия: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка завершения сжатия: %w", err)
	}
	return buf.Bytes(), nil
}

// decompress распаковывает данные, прочитанные из BadgerDB
func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения распакованных данных: %w", err)
	}
	return out, nil
}

// SaveRegion сохраняет накопленные изменения региона.
// Новые изменения сливаются с уже сохранённой дельтой, после
// успешной записи список изменений региона очищается.
func (rs *RegionStorage) SaveRegion(region *world.Region) error {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	if !rs.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	changed := region.Changes()
	if len(changed) == 0 {
		return nil // Нет изменений, пропускаем
	}

	// Загружаем существующую дельту и сливаем с новыми изменениями
	delta, err := rs.loadDelta(region.Name())
	if err != nil {
		return err
	}

	for _, pos := range changed {
		b, err := region.GetBlock(pos)
		if err != nil {
			return fmt.Errorf("ошибка чтения блока %v: %w", pos, err)
		}

		bd := BlockDelta{ID: b.ID}
		if len(b.Payload) > 0 {
			bd.Payload = b.Payload
		}
		delta.BlockDeltas[packPos(pos)] = bd
	}

	// Сериализуем и сжимаем дельту
	data, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("ошибка сериализации дельты: %w", err)
	}
	compressed, err := compress(data)
	if err != nil {
		return err
	}

	// Сохраняем в BadgerDB
	key := fmt.Sprintf("region:%s", region.Name())
	err = rs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	// Очищаем список изменений региона
	region.ClearChanges()

	return nil
}

// LoadRegion загружает сохранённую дельту региона.
// Если дельты нет, возвращается пустая.
func (rs *RegionStorage) LoadRegion(name string) (*RegionDelta, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	if !rs.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	return rs.loadDelta(name)
}

// loadDelta читает и распаковывает дельту из BadgerDB
func (rs *RegionStorage) loadDelta(name string) (*RegionDelta, error) {
	key := fmt.Sprintf("region:%s", name)
	var data []byte

	err := rs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	// Если дельта не найдена, возвращаем пустую
	if err == badger.ErrKeyNotFound {
		return &RegionDelta{
			Name:        name,
			BlockDeltas: make(map[string]BlockDelta),
		}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	decompressed, err := decompress(data)
	if err != nil {
		return nil, err
	}

	var delta RegionDelta
	if err := json.Unmarshal(decompressed, &delta); err != nil {
		return nil, fmt.Errorf("ошибка десериализации дельты: %w", err)
	}
	if delta.BlockDeltas == nil {
		delta.BlockDeltas = make(map[string]BlockDelta)
	}

	return &delta, nil
}

// ApplyDelta применяет дельту к региону.
// Список изменений региона после применения очищается, чтобы
// загрузка не выглядела как новые правки.
func (rs *RegionStorage) ApplyDelta(region *world.Region, delta *RegionDelta) error {
	if delta == nil || len(delta.BlockDeltas) == 0 {
		return nil
	}

	for key, bd := range delta.BlockDeltas {
		pos, err := unpackPos(key)
		if err != nil {
			return err
		}

		if err := region.SetBlockWithMetadata(pos, bd.ID, bd.Payload); err != nil {
			return fmt.Errorf("ошибка применения дельты в %v: %w", pos, err)
		}
	}

	region.ClearChanges()
	return nil
}

// LoadAndApply загружает и применяет дельту региона
func (rs *RegionStorage) LoadAndApply(region *world.Region) error {
	delta, err := rs.LoadRegion(region.Name())
	if err != nil {
		return err
	}

	return rs.ApplyDelta(region, delta)
}
