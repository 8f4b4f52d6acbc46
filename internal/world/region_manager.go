package world

import (
	"fmt"
	"sync"
)

// Имена регионов по умолчанию
const (
	RegionOverworld = "overworld"
	RegionNether    = "nether"
	RegionEnd       = "end"
)

// DefaultBounds возвращает стандартные границы высот для именованного региона
func DefaultBounds(name string) (Bounds, bool) {
	switch name {
	case RegionOverworld:
		return Bounds{MinY: -64, Height: 384}, true
	case RegionNether, RegionEnd:
		return Bounds{MinY: 0, Height: 256}, true
	default:
		return Bounds{}, false
	}
}

// RegionManager управляет набором именованных регионов
type RegionManager struct {
	mu      sync.RWMutex
	regions map[string]*Region
	order   []string // Порядок регистрации, для детерминированного перечисления
}

// NewRegionManager создаёт менеджер со стандартным набором регионов
func NewRegionManager() *RegionManager {
	rm := &RegionManager{
		regions: make(map[string]*Region),
	}
	for _, name := range []string{RegionOverworld, RegionNether, RegionEnd} {
		bounds, _ := DefaultBounds(name)
		rm.mustRegister(name, bounds)
	}
	return rm
}

// NewEmptyRegionManager создаёт менеджер без регионов (для тестов и кастомных миров)
func NewEmptyRegionManager() *RegionManager {
	return &RegionManager{
		regions: make(map[string]*Region),
	}
}

// Register создаёт и регистрирует регион. Повторная регистрация имени — ошибка.
func (rm *RegionManager) Register(name string, bounds Bounds) (*Region, error) {
	if name == "" {
		return nil, fmt.Errorf("имя региона не может быть пустым")
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.regions[name]; exists {
		return nil, fmt.Errorf("регион %q уже зарегистрирован", name)
	}

	r := NewRegion(name, bounds)
	rm.regions[name] = r
	rm.order = append(rm.order, name)
	return r, nil
}

func (rm *RegionManager) mustRegister(name string, bounds Bounds) *Region {
	r, err := rm.Register(name, bounds)
	if err != nil {
		panic(err)
	}
	return r
}

// Get возвращает регион по имени
func (rm *RegionManager) Get(name string) (*Region, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	r, exists := rm.regions[name]
	if !exists {
		return nil, fmt.Errorf("регион %q не найден", name)
	}
	return r, nil
}

// Names перечисляет имена регионов в порядке регистрации
func (rm *RegionManager) Names() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	out := make([]string, len(rm.order))
	copy(out, rm.order)
	return out
}
