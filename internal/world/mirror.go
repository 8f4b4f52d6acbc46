package world

import (
	"fmt"

	"github.com/annel0/blockscript/internal/vec"
)

// Mirror — фасад одного вокселя: локальная копия позиции, типа и признака
// пустоты, обновляемая из региона по запросу. Между вызовами Refresh
// состояние может устареть относительно региона.
type Mirror struct {
	region *Region
	pos    vec.Vec3

	TypeID BlockID // Тип блока на момент последнего Refresh
	Empty  bool    // Признак пустоты на момент последнего Refresh
}

// NewMirror создаёт фасад блока по компонентам координат.
// Вторая точка входа — NewMirrorAt — принимает готовую позицию.
func NewMirror(region *Region, x, y, z int) (*Mirror, error) {
	return NewMirrorAt(region, vec.NewVec3(x, y, z))
}

// NewMirrorAt создаёт фасад блока по позиции
func NewMirrorAt(region *Region, pos vec.Vec3) (*Mirror, error) {
	if region == nil {
		return nil, fmt.Errorf("регион не задан")
	}
	m := &Mirror{region: region, pos: pos}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Region возвращает регион, к которому привязан фасад
func (m *Mirror) Region() *Region {
	return m.region
}

// Position возвращает координаты отражаемого блока
func (m *Mirror) Position() vec.Vec3 {
	return m.pos
}

// Refresh перечитывает тип и признак пустоты из региона
func (m *Mirror) Refresh() error {
	b, err := m.region.GetBlock(m.pos)
	if err != nil {
		return err
	}
	m.TypeID = b.ID
	m.Empty = b.IsEmpty()
	return nil
}

// Apply записывает текущий TypeID фасада обратно в регион
func (m *Mirror) Apply() error {
	if err := m.region.SetBlock(m.pos, m.TypeID); err != nil {
		return err
	}
	m.Empty = m.TypeID == AirBlockID
	return nil
}
