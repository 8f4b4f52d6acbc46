package engine

import (
	"github.com/annel0/blockscript/internal/vec"
	"github.com/google/uuid"
)

// Player представляет подключённого участника сессии
type Player struct {
	ID       string   // Постоянный идентификатор участника (UUID)
	Name     string   // Отображаемое имя
	Region   string   // Имя региона, в котором находится участник
	Position vec.Vec3 // Текущая позиция в блоках
}

// NewPlayer создаёт участника с новым UUID
func NewPlayer(name string) *Player {
	return &Player{
		ID:   uuid.NewString(),
		Name: name,
	}
}
