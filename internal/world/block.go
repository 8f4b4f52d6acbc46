package world

// BlockID представляет строковый идентификатор типа блока
type BlockID string

// Базовые типы блоков
const (
	AirBlockID   BlockID = "air"
	StoneBlockID BlockID = "stone"
	GrassBlockID BlockID = "grass"
	WaterBlockID BlockID = "water"
	SandBlockID  BlockID = "sand"
	DirtBlockID  BlockID = "dirt"
)

// BlockDefinition описывает свойства типа блока
type BlockDefinition struct {
	ID    BlockID // Идентификатор типа
	Name  string  // Отображаемое имя
	Solid bool    // Можно ли стоять на блоке
}

var registry = map[BlockID]BlockDefinition{}

// RegisterBlock добавляет определение блока в регистр
func RegisterBlock(def BlockDefinition) {
	registry[def.ID] = def
}

// GetDefinition возвращает определение для указанного ID
func GetDefinition(id BlockID) (BlockDefinition, bool) {
	def, exists := registry[id]
	return def, exists
}

// IsValidBlockID проверяет, является ли ID зарегистрированным типом блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

func init() {
	RegisterBlock(BlockDefinition{ID: AirBlockID, Name: "Воздух", Solid: false})
	RegisterBlock(BlockDefinition{ID: StoneBlockID, Name: "Камень", Solid: true})
	RegisterBlock(BlockDefinition{ID: GrassBlockID, Name: "Трава", Solid: true})
	RegisterBlock(BlockDefinition{ID: WaterBlockID, Name: "Вода", Solid: false})
	RegisterBlock(BlockDefinition{ID: SandBlockID, Name: "Песок", Solid: true})
	RegisterBlock(BlockDefinition{ID: DirtBlockID, Name: "Земля", Solid: true})
}

// Block представляет собой блок в регионе
type Block struct {
	ID      BlockID                // Идентификатор типа блока
	Payload map[string]interface{} // Метаданные блока (состояние)
}

// NewBlock создаёт новый блок с указанным ID и пустыми метаданными
func NewBlock(id BlockID) Block {
	return Block{
		ID:      id,
		Payload: make(map[string]interface{}),
	}
}

// IsEmpty возвращает true для пустого блока (воздуха)
func (b Block) IsEmpty() bool {
	return b.ID == AirBlockID || b.ID == ""
}

// Clone создаёт копию блока
func (b Block) Clone() Block {
	newPayload := make(map[string]interface{}, len(b.Payload))
	for k, v := range b.Payload {
		newPayload[k] = v
	}

	return Block{
		ID:      b.ID,
		Payload: newPayload,
	}
}
