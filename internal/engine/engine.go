package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/blockscript/internal/eventbus"
	"github.com/annel0/blockscript/internal/history"
	"github.com/annel0/blockscript/internal/logging"
	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
)

// TickHandler вызывается движком на игровом тике.
// Получает номер тика и снимок подключённых участников.
type TickHandler func(tick uint64, players []*Player)

// BeforePlaceHandler вызывается до установки блока; может отменить действие
type BeforePlaceHandler func(ev *world.BeforePlaceEvent)

// AfterPlaceHandler вызывается после успешной установки блока
type AfterPlaceHandler func(ev *world.AfterPlaceEvent)

// tickRegistration хранит обработчик тика и его интервал
type tickRegistration struct {
	handler TickHandler
	every   uint64 // Вызывать каждые N тиков
}

// Engine — однопоточный тик-луп поверх менеджера регионов.
// Обработчики выполняются синхронно и до конца внутри Step: пока Step не
// вернулся, никакой другой обработчик не выполняется. Внешние горутины
// могут вызывать API движка, доступ защищён мьютексом.
type Engine struct {
	mu      sync.RWMutex
	regions *world.RegionManager

	players     map[string]*Player
	playerOrder []string // Порядок подключения, для детерминированного обхода

	currentTick  uint64
	tickHandlers []tickRegistration
	beforePlace  []BeforePlaceHandler
	afterPlace   []AfterPlaceHandler

	positions *history.Histories[vec.Vec3]
	bus       eventbus.EventBus
	log       *logging.Logger
}

// NewEngine создаёт движок поверх менеджера регионов.
// historyCapacity — глубина истории позиций участников (последние N тиков).
func NewEngine(regions *world.RegionManager, historyCapacity int) (*Engine, error) {
	if regions == nil {
		return nil, fmt.Errorf("менеджер регионов не задан")
	}

	positions, err := history.New(historyCapacity, vec.Vec3{})
	if err != nil {
		return nil, fmt.Errorf("история позиций: %w", err)
	}

	return &Engine{
		regions:   regions,
		players:   make(map[string]*Player),
		positions: positions,
		log:       logging.GetEngineLogger(),
	}, nil
}

// SetBus подключает шину уведомлений для экспорта событий наблюдателям
func (e *Engine) SetBus(bus eventbus.EventBus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bus = bus
}

// Regions возвращает менеджер регионов движка
func (e *Engine) Regions() *world.RegionManager {
	return e.regions
}

// PositionHistory возвращает историю позиций участников.
// Ключ — идентификатор участника; каждый тик движок добавляет текущую
// позицию каждого подключённого участника.
func (e *Engine) PositionHistory() *history.Histories[vec.Vec3] {
	return e.positions
}

// AddPlayer подключает участника с указанным именем и стартовой позицией
func (e *Engine) AddPlayer(name, region string, pos vec.Vec3) *Player {
	p := NewPlayer(name)
	p.Region = region
	p.Position = pos

	e.mu.Lock()
	e.players[p.ID] = p
	e.playerOrder = append(e.playerOrder, p.ID)
	e.mu.Unlock()

	playersOnline.Inc()
	e.log.Debug("Участник %s (%s) подключён в регионе %s", p.Name, p.ID, region)
	return p
}

// RemovePlayer отключает участника и сообщает, был ли он подключён
func (e *Engine) RemovePlayer(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.players[id]; !exists {
		return false
	}
	delete(e.players, id)
	for i, pid := range e.playerOrder {
		if pid == id {
			e.playerOrder = append(e.playerOrder[:i], e.playerOrder[i+1:]...)
			break
		}
	}
	playersOnline.Dec()
	return true
}

// MovePlayer обновляет позицию участника
func (e *Engine) MovePlayer(id string, pos vec.Vec3) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, exists := e.players[id]
	if !exists {
		return fmt.Errorf("участник %s не подключён", id)
	}
	p.Position = pos
	return nil
}

// Players возвращает снимок подключённых участников в порядке подключения
func (e *Engine) Players() []*Player {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.playersLocked()
}

func (e *Engine) playersLocked() []*Player {
	out := make([]*Player, 0, len(e.playerOrder))
	for _, id := range e.playerOrder {
		if p, exists := e.players[id]; exists {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// OnTick регистрирует обработчик, вызываемый каждые every тиков
func (e *Engine) OnTick(every uint64, handler TickHandler) error {
	if every < 1 {
		return fmt.Errorf("недопустимый интервал тиков: %d (должен быть >= 1)", every)
	}
	if handler == nil {
		return fmt.Errorf("обработчик тика не задан")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickHandlers = append(e.tickHandlers, tickRegistration{handler: handler, every: every})
	return nil
}

// SubscribeBeforePlace регистрирует обработчик, вызываемый до установки блока.
// Обработчики вызываются синхронно в порядке регистрации; любой из них
// может установить флаг Cancel.
func (e *Engine) SubscribeBeforePlace(handler BeforePlaceHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.beforePlace = append(e.beforePlace, handler)
}

// SubscribeAfterPlace регистрирует обработчик, вызываемый после установки блока
func (e *Engine) SubscribeAfterPlace(handler AfterPlaceHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.afterPlace = append(e.afterPlace, handler)
}

// CurrentTick возвращает номер последнего обработанного тика
func (e *Engine) CurrentTick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentTick
}

// Step синхронно обрабатывает один тик: записывает позиции участников
// в историю и вызывает обработчики, чей интервал наступил.
func (e *Engine) Step() {
	e.mu.Lock()
	e.currentTick++
	tick := e.currentTick
	players := e.playersLocked()
	handlers := make([]tickRegistration, len(e.tickHandlers))
	copy(handlers, e.tickHandlers)

	// Отслеживание позиций: последние N позиций каждого участника
	for _, p := range players {
		e.positions.Append(p.ID, p.Position)
	}
	e.mu.Unlock()

	for _, reg := range handlers {
		if tick%reg.every == 0 {
			reg.handler(tick, players)
		}
	}

	ticksTotal.Inc()
	e.publish(world.EventTypeTick, "", "", map[string]interface{}{
		"tick":    tick,
		"players": len(players),
	})
}

// Run запускает тик-луп с указанной частотой до отмены контекста
func (e *Engine) Run(ctx context.Context, tickRate int) error {
	if tickRate < 1 {
		return fmt.Errorf("недопустимая частота тиков: %d", tickRate)
	}

	interval := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("Тик-луп запущен: %d тиков/с", tickRate)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("Тик-луп остановлен на тике %d", e.CurrentTick())
			return ctx.Err()
		case <-ticker.C:
			e.Step()
		}
	}
}

// PlaceBlock выполняет установку блока участником: уведомляет
// before-обработчиков (с возможностью отмены), изменяет регион,
// уведомляет after-обработчиков и публикует событие в шину.
// Возвращает false без ошибки, если действие было отменено.
func (e *Engine) PlaceBlock(actor *Player, regionName string, pos vec.Vec3, id world.BlockID) (bool, error) {
	if actor == nil {
		return false, fmt.Errorf("участник не задан")
	}

	region, err := e.regions.Get(regionName)
	if err != nil {
		return false, err
	}

	e.mu.RLock()
	before := make([]BeforePlaceHandler, len(e.beforePlace))
	copy(before, e.beforePlace)
	after := make([]AfterPlaceHandler, len(e.afterPlace))
	copy(after, e.afterPlace)
	e.mu.RUnlock()

	beforeEv := &world.BeforePlaceEvent{
		Actor:    actor.ID,
		Region:   region,
		Position: pos,
		Block:    id,
	}
	for _, h := range before {
		h(beforeEv)
	}
	if beforeEv.Cancel {
		placementsCancelled.Inc()
		e.log.Debug("Установка %s в %v отменена обработчиком", id, pos)
		return false, nil
	}

	prev, err := region.GetBlock(pos)
	if err != nil {
		return false, err
	}
	if err := region.SetBlock(pos, id); err != nil {
		return false, err
	}

	afterEv := &world.AfterPlaceEvent{
		Actor:    actor.ID,
		Region:   region,
		Position: pos,
		Block:    id,
		Previous: prev.ID,
	}
	for _, h := range after {
		h(afterEv)
	}

	placementsTotal.Inc()
	e.publish(world.EventTypeBlockPlace, actor.ID, regionName, map[string]interface{}{
		"position": pos,
		"block":    id,
		"previous": prev.ID,
	})
	return true, nil
}

// publish отправляет событие в шину, если она подключена
func (e *Engine) publish(eventType, actor, region string, payload interface{}) {
	e.mu.RLock()
	bus := e.bus
	e.mu.RUnlock()
	if bus == nil {
		return
	}

	ev, err := eventbus.NewEnvelope("engine", eventType, actor, region, payload)
	if err != nil {
		e.log.Error("Ошибка сериализации события %s: %v", eventType, err)
		return
	}
	if err := bus.Publish(context.Background(), ev); err != nil {
		e.log.Error("Ошибка публикации события %s: %v", eventType, err)
	}
}
