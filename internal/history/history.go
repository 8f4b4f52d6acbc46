package history

import (
	"errors"
	"fmt"
)

// ErrNoKey возвращается операциями с неявным ключом,
// когда ни один ключ ещё не был использован.
var ErrNoKey = errors.New("ключ не указан и последний использованный ключ отсутствует")

// Histories хранит для каждого строкового ключа последовательность
// фиксированной ёмкости из последних значений. При переполнении самое
// старое значение (индекс 0) вытесняется (FIFO).
//
// Типичное применение — последние N позиций игрока за тик без повторного
// указания идентификатора: Read и Append запоминают последний ключ,
// операции *Last используют его как значение по умолчанию.
//
// Структура не содержит внутренних блокировок: она однопоточная по
// построению и встраивается в ту модель конкурентности, которую задаёт
// владелец (тик-луп движка или тест).
type Histories[T any] struct {
	capacity int
	def      T
	entries  map[string][]T
	keys     []string // порядок первой записи ключей, для детерминированного обхода
	lastKey  string
	hasLast  bool
}

// New создаёт хранилище историй с указанной ёмкостью и значением-заполнителем.
// Ёмкость меньше 1 — ошибка валидации.
func New[T any](capacity int, def T) (*Histories[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("недопустимая ёмкость истории: %d (должна быть >= 1)", capacity)
	}
	return &Histories[T]{
		capacity: capacity,
		def:      def,
		entries:  make(map[string][]T),
	}, nil
}

// Capacity возвращает настроенную ёмкость
func (h *Histories[T]) Capacity() int {
	return h.capacity
}

// Read возвращает копию последовательности для ключа и запоминает ключ
// как последний использованный. Для отсутствующего ключа возвращается
// свежая последовательность длины capacity, заполненная значением по
// умолчанию; она НЕ сохраняется в хранилище.
func (h *Histories[T]) Read(key string) []T {
	h.lastKey = key
	h.hasLast = true

	seq, exists := h.entries[key]
	if !exists {
		return h.defaultSeq()
	}

	out := make([]T, len(seq))
	copy(out, seq)
	return out
}

// Append добавляет значение в последовательность ключа и запоминает ключ
// как последний использованный. Если записи ещё нет, сначала создаётся
// последовательность длины capacity из значений по умолчанию, поэтому
// уже после первого Append хранимая длина равна capacity, а дефолтные
// значения вытесняются по мере поступления настоящих.
func (h *Histories[T]) Append(key string, value T) {
	h.lastKey = key
	h.hasLast = true

	seq, exists := h.entries[key]
	if !exists {
		seq = h.defaultSeq()
		h.keys = append(h.keys, key)
	}

	seq = append(seq, value)
	if len(seq) > h.capacity {
		seq = seq[len(seq)-h.capacity:]
	}
	h.entries[key] = seq
}

// AppendLast добавляет значение по последнему использованному ключу
func (h *Histories[T]) AppendLast(value T) error {
	if !h.hasLast {
		return ErrNoKey
	}
	h.Append(h.lastKey, value)
	return nil
}

// Remove удаляет запись ключа и сообщает, существовала ли она
func (h *Histories[T]) Remove(key string) bool {
	if _, exists := h.entries[key]; !exists {
		return false
	}
	delete(h.entries, key)
	h.dropKey(key)
	return true
}

// RemoveAll удаляет все записи. Последний использованный ключ сохраняется
// (в отличие от Clear).
func (h *Histories[T]) RemoveAll() {
	h.entries = make(map[string][]T)
	h.keys = nil
}

// Exists сообщает, есть ли запись для ключа
func (h *Histories[T]) Exists(key string) bool {
	_, exists := h.entries[key]
	return exists
}

// ExistsLast сообщает, есть ли запись для последнего использованного ключа
func (h *Histories[T]) ExistsLast() (bool, error) {
	if !h.hasLast {
		return false, ErrNoKey
	}
	return h.Exists(h.lastKey), nil
}

// Size возвращает длину хранимой последовательности ключа, 0 если записи нет
func (h *Histories[T]) Size(key string) int {
	return len(h.entries[key])
}

// SizeLast возвращает длину последовательности последнего использованного ключа
func (h *Histories[T]) SizeLast() (int, error) {
	if !h.hasLast {
		return 0, ErrNoKey
	}
	return h.Size(h.lastKey), nil
}

// RawRead возвращает хранимую последовательность без копирования и без
// материализации значений по умолчанию. Запасной выход; последний
// использованный ключ не обновляется.
func (h *Histories[T]) RawRead(key string) ([]T, bool) {
	seq, exists := h.entries[key]
	return seq, exists
}

// RawWrite записывает последовательность напрямую, минуя контроль ёмкости.
// Запасной выход; последний использованный ключ не обновляется.
func (h *Histories[T]) RawWrite(key string, seq []T) {
	if _, exists := h.entries[key]; !exists {
		h.keys = append(h.keys, key)
	}
	h.entries[key] = seq
}

// Snapshot возвращает копию всего отображения ключ -> последовательность.
// Для детерминированного обхода используйте Keys.
func (h *Histories[T]) Snapshot() map[string][]T {
	out := make(map[string][]T, len(h.entries))
	for key, seq := range h.entries {
		cp := make([]T, len(seq))
		copy(cp, seq)
		out[key] = cp
	}
	return out
}

// Keys возвращает ключи в порядке первой записи
func (h *Histories[T]) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Clear полностью очищает хранилище и сбрасывает последний использованный ключ
func (h *Histories[T]) Clear() {
	h.entries = make(map[string][]T)
	h.keys = nil
	h.lastKey = ""
	h.hasLast = false
}

// LastKey возвращает последний использованный ключ, если он был установлен
func (h *Histories[T]) LastKey() (string, bool) {
	return h.lastKey, h.hasLast
}

// defaultSeq создаёт последовательность длины capacity из значений по умолчанию
func (h *Histories[T]) defaultSeq() []T {
	seq := make([]T, h.capacity)
	for i := range seq {
		seq[i] = h.def
	}
	return seq
}

// dropKey убирает ключ из списка порядка вставки
func (h *Histories[T]) dropKey(key string) {
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			return
		}
	}
}
