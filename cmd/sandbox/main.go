package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockscript/internal/config"
	"github.com/annel0/blockscript/internal/engine"
	"github.com/annel0/blockscript/internal/eventbus"
	"github.com/annel0/blockscript/internal/logging"
	"github.com/annel0/blockscript/internal/observability"
	"github.com/annel0/blockscript/internal/storage"
	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или ENV BLOCKSCRIPT_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("sandbox"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск скриптовой песочницы...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{} // Дефолты
	}

	tickRate := cfg.Engine.GetTickRate()
	historyCap := cfg.Engine.GetHistoryCapacity()
	dataPath := cfg.Storage.GetDataPath()
	logging.Info("📡 Конфигурация: %d тиков/с, история позиций %d, данные в %s",
		tickRate, historyCap, dataPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ТЕЛЕМЕТРИЯ ===
	if os.Getenv("SCRIPT_TELEMETRY") == "1" {
		shutdownTelemetry, err := observability.InitTelemetry(ctx, "blockscript-sandbox")
		if err != nil {
			logging.Warn("⚠️ Телеметрия недоступна: %v", err)
		} else {
			defer shutdownTelemetry(context.Background())
		}
	}

	// === МИРЫ ===
	logging.Debug("Создание менеджера регионов...")
	regions := world.NewRegionManager()

	overworld, err := regions.Get(world.RegionOverworld)
	if err != nil {
		log.Fatalf("❌ Регион overworld отсутствует: %v", err)
	}

	// Процедурный рельеф по сиду
	seed := int64(cfg.Engine.Seed)
	if seed == 0 {
		seed = 1337
	}
	gen := world.NewGenerator(seed)
	placed, err := gen.FillTerrain(overworld, vec.Vec2{X: -32, Y: -32}, vec.Vec2{X: 32, Y: 32})
	if err != nil {
		logging.Error("❌ Ошибка генерации рельефа: %v", err)
		log.Fatalf("❌ Ошибка генерации рельефа: %v", err)
	}
	// Рельеф восстанавливается по сиду, в дельту он не входит
	overworld.ClearChanges()
	logging.Info("🌍 Рельеф сгенерирован: %d блоков (seed=%d)", placed, seed)

	// === ХРАНИЛИЩЕ РЕГИОНОВ ===
	regionStorage, err := storage.NewRegionStorage(dataPath)
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища регионов: %v", err)
		log.Fatalf("❌ Ошибка открытия хранилища регионов: %v", err)
	}
	defer regionStorage.Close()

	// Применяем сохранённые правки поверх сгенерированного рельефа
	for _, name := range regions.Names() {
		r, _ := regions.Get(name)
		if err := regionStorage.LoadAndApply(r); err != nil {
			logging.Warn("⚠️ Не удалось применить дельту региона %s: %v", name, err)
		}
	}
	logging.Info("💾 Сохранённые правки регионов применены")

	// === РЕПОЗИТОРИЙ ПОЗИЦИЙ ===
	positionRepo := buildPositionRepo(cfg)

	// === ШИНА УВЕДОМЛЕНИЙ ===
	bus := buildEventBus(cfg)
	eventbus.Init(bus) // Глобальная шина для компонентов без прямой ссылки
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Ошибка подписки лог-листенера: %v", err)
	}

	metricsExporter := eventbus.NewMetricsExporter(bus)
	metricsExporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))
	defer metricsExporter.Stop()

	// Архив событий в MongoDB (опционально)
	if cfg.Storage.MongoURI != "" {
		archive, err := storage.NewEventArchive(storage.MongoConfig{URI: cfg.Storage.MongoURI})
		if err != nil {
			logging.Warn("⚠️ Архив событий недоступен: %v", err)
		} else {
			defer archive.Close()
			if err := archive.AttachTo(ctx, bus, eventbus.Filter{}); err != nil {
				logging.Warn("⚠️ Ошибка подключения архива: %v", err)
			}
		}
	}

	// === ДВИЖОК ===
	logging.Debug("Создание движка...")
	eng, err := engine.NewEngine(regions, historyCap)
	if err != nil {
		logging.Error("❌ Ошибка создания движка: %v", err)
		log.Fatalf("❌ Ошибка создания движка: %v", err)
	}
	eng.SetBus(bus)

	registerDemoScripts(eng)
	registerAutosave(ctx, eng, positionRepo, regionStorage, regions)

	// Демонстрационный участник
	steve := eng.AddPlayer("steve", world.RegionOverworld, vec.NewVec3(0, 64, 0))
	logging.Info("👤 Участник %s (%s) подключён", steve.Name, steve.ID)

	logging.Info("✅ Песочница запущена")
	logging.Info("   ⏱  Тик-луп: %d тиков/с", tickRate)
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())

	// Запускаем тик-луп в отдельной горутине
	runDone := make(chan error, 1)
	go func() {
		runDone <- eng.Run(ctx, tickRate)
	}()

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Ждем сигнала для завершения
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	cancel()
	<-runDone

	// Финальное сохранение
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	saveAll(saveCtx, eng, positionRepo, regionStorage, regions)

	logging.Info("👋 Песочница остановлена на тике %d", eng.CurrentTick())
}

// buildPositionRepo выбирает бэкенд позиций: MariaDB, Redis или память
func buildPositionRepo(cfg *config.Config) storage.PositionRepo {
	if dsn := cfg.Storage.MariaDSN; dsn != "" {
		repo, err := storage.NewMariaPositionRepo(dsn)
		if err != nil {
			logging.Warn("⚠️ MariaDB недоступна, переключение на память: %v", err)
		} else {
			logging.Info("🐬 Позиции хранятся в MariaDB")
			return repo
		}
	}
	if addr := cfg.Storage.RedisURL; addr != "" {
		redisCfg := storage.DefaultRedisConfig()
		redisCfg.Addr = addr
		repo, err := storage.NewRedisPositionRepo(redisCfg)
		if err != nil {
			logging.Warn("⚠️ Redis недоступен, переключение на память: %v", err)
		} else {
			logging.Info("🔴 Позиции хранятся в Redis (%s)", addr)
			return repo
		}
	}
	logging.Info("🧠 Позиции хранятся в памяти")
	return storage.NewMemoryPositionRepo()
}

// buildEventBus выбирает шину: NATS JetStream или in-memory
func buildEventBus(cfg *config.Config) eventbus.EventBus {
	if url := cfg.EventBus.URL; url != "" {
		retention := time.Duration(cfg.EventBus.Retention) * time.Hour
		if retention <= 0 {
			retention = 24 * time.Hour
		}
		bus, err := eventbus.NewJetStreamBus(url, "", retention)
		if err != nil {
			logging.Warn("⚠️ NATS недоступен, переключение на in-memory шину: %v", err)
		} else {
			logging.Info("📨 Уведомления экспортируются в NATS JetStream (%s)", url)
			return bus
		}
	}

	buffer := cfg.EventBus.Buffer
	if buffer <= 0 {
		buffer = 1024
	}
	return eventbus.NewMemoryBus(buffer)
}

// registerDemoScripts подключает примеры скриптов: защита воды от застройки
// и периодический отчёт о позициях.
func registerDemoScripts(eng *engine.Engine) {
	// Вода не заменяется обычными блоками
	eng.SubscribeBeforePlace(func(ev *world.BeforePlaceEvent) {
		current, err := ev.Region.GetBlock(ev.Position)
		if err != nil {
			return
		}
		if current.ID == world.WaterBlockID && ev.Block != world.WaterBlockID {
			logging.Debug("🚫 Застройка воды в %v отменена", ev.Position)
			ev.Cancel = true
		}
	})

	eng.SubscribeAfterPlace(func(ev *world.AfterPlaceEvent) {
		logging.Debug("🧱 %s поставил %s в %v (было %s)", ev.Actor, ev.Block, ev.Position, ev.Previous)
	})

	// Отчёт о пройденном пути раз в 100 тиков
	_ = eng.OnTick(100, func(tick uint64, players []*engine.Player) {
		for _, p := range players {
			trail := eng.PositionHistory().Read(p.ID)
			logging.Debug("📊 Тик %d: %s в %v, глубина следа %d", tick, p.Name, p.Position, len(trail))
		}
	})
}

// registerAutosave сохраняет позиции и дельты регионов раз в 200 тиков
func registerAutosave(ctx context.Context, eng *engine.Engine, repo storage.PositionRepo,
	rs *storage.RegionStorage, regions *world.RegionManager) {
	_ = eng.OnTick(200, func(tick uint64, players []*engine.Player) {
		saveAll(ctx, eng, repo, rs, regions)
	})
}

// saveAll сохраняет позиции всех участников и дельты всех регионов
func saveAll(ctx context.Context, eng *engine.Engine, repo storage.PositionRepo,
	rs *storage.RegionStorage, regions *world.RegionManager) {
	batch := make(map[string]storage.PlayerPosition)
	for _, p := range eng.Players() {
		batch[p.ID] = storage.PlayerPosition{
			Region:    p.Region,
			Position:  p.Position,
			UpdatedAt: time.Now(),
		}
	}
	if err := repo.BatchSave(ctx, batch); err != nil {
		logging.Error("❌ Ошибка сохранения позиций: %v", err)
	}

	for _, name := range regions.Names() {
		r, err := regions.Get(name)
		if err != nil {
			continue
		}
		if err := rs.SaveRegion(r); err != nil {
			logging.Error("❌ Ошибка сохранения региона %s: %v", name, err)
		}
	}
}
