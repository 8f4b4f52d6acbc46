package world

import (
	"github.com/annel0/blockscript/internal/vec"
)

// Типы событий для шины
const (
	EventTypeBlockPlace = "BlockPlace"
	EventTypeTick       = "Tick"
)

// BeforePlaceEvent передаётся подписчикам до установки блока.
// Обработчик может установить Cancel, чтобы отменить действие.
type BeforePlaceEvent struct {
	Actor    string   // Идентификатор участника, выполняющего установку
	Region   *Region  // Затрагиваемый регион
	Position vec.Vec3 // Координаты блока
	Block    BlockID  // Устанавливаемый тип блока
	Cancel   bool     // Флаг отмены действия
}

// AfterPlaceEvent передаётся подписчикам после успешной установки блока
type AfterPlaceEvent struct {
	Actor    string   // Идентификатор участника, выполнившего установку
	Region   *Region  // Затронутый регион
	Position vec.Vec3 // Координаты блока
	Block    BlockID  // Установленный тип блока
	Previous BlockID  // Тип блока до установки
}
