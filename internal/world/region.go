package world

import (
	"fmt"
	"sync"

	"github.com/annel0/blockscript/internal/vec"
)

// Bounds представляет диапазон высот региона в блоках
type Bounds struct {
	MinY   int // Минимальная координата Y
	Height int // Общая высота
}

// MaxY возвращает первую координату Y над верхней границей
func (b Bounds) MaxY() int {
	return b.MinY + b.Height
}

// Contains проверяет, попадает ли координата Y в диапазон
func (b Bounds) Contains(y int) bool {
	return y >= b.MinY && y < b.MaxY()
}

// Режимы заливки объёма
const (
	FillModeReplace = "replace" // Заменить все блоки в объёме
	FillModeKeep    = "keep"    // Установить только на место пустых блоков
	FillModeHollow  = "hollow"  // Оболочка из блоков, внутренность очищается
)

// Region представляет именованное независимое воксельное пространство.
// Хранилище разреженное: отсутствующая позиция читается как воздух.
type Region struct {
	name    string
	bounds  Bounds
	mu      sync.RWMutex
	blocks  map[vec.Vec3]Block
	changes map[vec.Vec3]struct{} // Изменённые позиции с последнего сохранения
}

// NewRegion создаёт пустой регион с указанным именем и границами высот
func NewRegion(name string, bounds Bounds) *Region {
	return &Region{
		name:    name,
		bounds:  bounds,
		blocks:  make(map[vec.Vec3]Block),
		changes: make(map[vec.Vec3]struct{}),
	}
}

// Name возвращает имя региона
func (r *Region) Name() string {
	return r.name
}

// Bounds возвращает границы высот региона
func (r *Region) Bounds() Bounds {
	return r.bounds
}

// checkY проверяет попадание позиции в диапазон высот региона
func (r *Region) checkY(pos vec.Vec3) error {
	if !r.bounds.Contains(pos.Y) {
		return fmt.Errorf("координата Y=%d вне диапазона региона %s [%d, %d)",
			pos.Y, r.name, r.bounds.MinY, r.bounds.MaxY())
	}
	return nil
}

// GetBlock возвращает блок по координатам.
// Неустановленные позиции читаются как воздух.
func (r *Region) GetBlock(pos vec.Vec3) (Block, error) {
	if err := r.checkY(pos); err != nil {
		return Block{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.blocks[pos]
	if !exists {
		return NewBlock(AirBlockID), nil
	}
	return b.Clone(), nil
}

// SetBlock устанавливает тип блока по координатам
func (r *Region) SetBlock(pos vec.Vec3, id BlockID) error {
	return r.SetBlockWithMetadata(pos, id, nil)
}

// SetBlockWithMetadata устанавливает блок вместе с метаданными
func (r *Region) SetBlockWithMetadata(pos vec.Vec3, id BlockID, payload map[string]interface{}) error {
	if err := r.checkY(pos); err != nil {
		return err
	}
	if !IsValidBlockID(id) {
		return fmt.Errorf("неизвестный тип блока: %q", id)
	}

	b := NewBlock(id)
	for k, v := range payload {
		b.Payload[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == AirBlockID && len(payload) == 0 {
		// Воздух без метаданных не храним, карта остаётся разреженной
		delete(r.blocks, pos)
	} else {
		r.blocks[pos] = b
	}
	r.changes[pos] = struct{}{}
	return nil
}

// RemoveBlock заменяет блок воздухом и возвращает прежний блок
func (r *Region) RemoveBlock(pos vec.Vec3) (Block, error) {
	prev, err := r.GetBlock(pos)
	if err != nil {
		return Block{}, err
	}
	if err := r.SetBlock(pos, AirBlockID); err != nil {
		return Block{}, err
	}
	return prev, nil
}

// GetBlockMetadataValue возвращает значение метаданных блока по ключу
func (r *Region) GetBlockMetadataValue(pos vec.Vec3, key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.blocks[pos]
	if !exists {
		return nil, false
	}
	v, ok := b.Payload[key]
	return v, ok
}

// SetBlockMetadataValue устанавливает значение метаданных блока по ключу
func (r *Region) SetBlockMetadataValue(pos vec.Vec3, key string, value interface{}) error {
	if err := r.checkY(pos); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, exists := r.blocks[pos]
	if !exists {
		b = NewBlock(AirBlockID)
	}
	if b.Payload == nil {
		b.Payload = make(map[string]interface{})
	}
	b.Payload[key] = value
	r.blocks[pos] = b
	r.changes[pos] = struct{}{}
	return nil
}

// Fill заливает объём между углами min и max указанным типом блока.
// Возвращает число установленных блоков. Перевёрнутые углы и
// нераспознанный режим — ошибки валидации.
func (r *Region) Fill(minC, maxC vec.Vec3, id BlockID, mode string) (int, error) {
	if minC.X > maxC.X || minC.Y > maxC.Y || minC.Z > maxC.Z {
		return 0, fmt.Errorf("перевёрнутый объём заливки: min=%v max=%v", minC, maxC)
	}
	switch mode {
	case FillModeReplace, FillModeKeep, FillModeHollow:
	default:
		return 0, fmt.Errorf("неизвестный режим заливки: %q (ожидается %s, %s или %s)",
			mode, FillModeReplace, FillModeKeep, FillModeHollow)
	}
	if err := r.checkY(minC); err != nil {
		return 0, err
	}
	if err := r.checkY(maxC); err != nil {
		return 0, err
	}

	count := 0
	for y := minC.Y; y <= maxC.Y; y++ {
		for x := minC.X; x <= maxC.X; x++ {
			for z := minC.Z; z <= maxC.Z; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}

				switch mode {
				case FillModeKeep:
					current, err := r.GetBlock(pos)
					if err != nil {
						return count, err
					}
					if !current.IsEmpty() {
						continue
					}
				case FillModeHollow:
					onShell := x == minC.X || x == maxC.X ||
						y == minC.Y || y == maxC.Y ||
						z == minC.Z || z == maxC.Z
					if !onShell {
						if err := r.SetBlock(pos, AirBlockID); err != nil {
							return count, err
						}
						continue
					}
				}

				if err := r.SetBlock(pos, id); err != nil {
					return count, err
				}
				count++
			}
		}
	}
	return count, nil
}

// QueryBlocks возвращает непустые блоки в объёме между двумя углами.
// Углы нормализуются покомпонентно, порядок аргументов не важен.
func (r *Region) QueryBlocks(a, b vec.Vec3) map[vec.Vec3]Block {
	lo := vec.MinComponents(a, b)
	hi := vec.MaxComponents(a, b)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[vec.Vec3]Block)
	for pos, blk := range r.blocks {
		if pos.X < lo.X || pos.X > hi.X ||
			pos.Y < lo.Y || pos.Y > hi.Y ||
			pos.Z < lo.Z || pos.Z > hi.Z {
			continue
		}
		result[pos] = blk.Clone()
	}
	return result
}

// BlockCount возвращает число хранимых (непустых) блоков
func (r *Region) BlockCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Changes возвращает копию множества изменённых позиций
func (r *Region) Changes() []vec.Vec3 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vec.Vec3, 0, len(r.changes))
	for pos := range r.changes {
		out = append(out, pos)
	}
	return out
}

// ClearChanges очищает список изменённых позиций после сохранения
func (r *Region) ClearChanges() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = make(map[vec.Vec3]struct{})
}
