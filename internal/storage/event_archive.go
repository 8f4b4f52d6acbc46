package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/blockscript/internal/eventbus"
	"github.com/annel0/blockscript/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig содержит настройки подключения к MongoDB для архива событий
type MongoConfig struct {
	URI        string // например mongodb://localhost:27017
	Database   string // например blockscript
	Collection string // например script_events
}

// EventArchive пишет события движка в MongoDB для последующего анализа.
// Подключается к шине как обычный подписчик.
type EventArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
	sub        eventbus.Subscription
	log        *logging.Logger
}

// archivedEvent — документ архива в MongoDB
type archivedEvent struct {
	EventID   string            `bson:"event_id"`
	Timestamp time.Time         `bson:"timestamp"`
	Source    string            `bson:"source"`
	EventType string            `bson:"event_type"`
	Actor     string            `bson:"actor,omitempty"`
	Region    string            `bson:"region,omitempty"`
	Payload   bson.Raw          `bson:"payload,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty"`
}

// NewEventArchive устанавливает соединение и возвращает архив
func NewEventArchive(cfg MongoConfig) (*EventArchive, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "blockscript"
	}
	if cfg.Collection == "" {
		cfg.Collection = "script_events"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MongoDB: %w", err)
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("не удалось проверить соединение с MongoDB: %w", err)
	}

	archive := &EventArchive{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
		log:        logging.GetStorageLogger(),
	}

	if err := archive.ensureIndexes(); err != nil {
		return nil, err
	}
	return archive, nil
}

func (a *EventArchive) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.ctxTimeout)
	defer cancel()
	eventIDIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("eventid_unique"),
	}
	timestampIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	}
	_, err := a.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{eventIDIdx, timestampIdx})
	return err
}

// Archive сохраняет одно событие в коллекцию
func (a *EventArchive) Archive(ctx context.Context, ev *eventbus.Envelope) error {
	doc := archivedEvent{
		EventID:   ev.ID,
		Timestamp: ev.Timestamp,
		Source:    ev.Source,
		EventType: ev.EventType,
		Actor:     ev.Actor,
		Region:    ev.Region,
		Metadata:  ev.Metadata,
	}
	if len(ev.Payload) > 0 {
		// Payload уже JSON; конвертируем в BSON-документ
		raw, err := bsonFromJSON(ev.Payload)
		if err != nil {
			return fmt.Errorf("ошибка конвертации payload: %w", err)
		}
		doc.Payload = raw
	}

	_, err := a.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil // Повторная доставка, событие уже в архиве
	}
	if err != nil {
		return fmt.Errorf("ошибка записи события %s: %w", ev.ID, err)
	}
	return nil
}

// bsonFromJSON преобразует JSON-байты в bson.Raw
func bsonFromJSON(data []byte) (bson.Raw, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, true, &doc); err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

// Recent возвращает последние limit событий, отсортированные по убыванию времени
func (a *EventArchive) Recent(ctx context.Context, limit int64) ([]*eventbus.Envelope, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*eventbus.Envelope
	for cursor.Next(ctx) {
		var doc archivedEvent
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ошибка декодирования документа: %w", err)
		}

		ev := &eventbus.Envelope{
			ID:        doc.EventID,
			Timestamp: doc.Timestamp,
			Source:    doc.Source,
			EventType: doc.EventType,
			Actor:     doc.Actor,
			Region:    doc.Region,
			Metadata:  doc.Metadata,
		}
		if len(doc.Payload) > 0 {
			data, err := bson.MarshalExtJSON(doc.Payload, false, false)
			if err != nil {
				return nil, fmt.Errorf("ошибка конвертации payload: %w", err)
			}
			ev.Payload = data
		}
		result = append(result, ev)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("ошибка курсора: %w", err)
	}

	return result, nil
}

// AttachTo подписывает архив на шину уведомлений.
// Ошибки записи логируются и не прерывают рассылку.
func (a *EventArchive) AttachTo(ctx context.Context, bus eventbus.EventBus, f eventbus.Filter) error {
	sub, err := bus.Subscribe(ctx, f, func(ctx context.Context, ev *eventbus.Envelope) {
		wctx, cancel := context.WithTimeout(ctx, a.ctxTimeout)
		defer cancel()
		if err := a.Archive(wctx, ev); err != nil {
			a.log.Error("Ошибка архивации события %s: %v", ev.ID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка подписки архива: %w", err)
	}

	a.sub = sub
	a.log.Info("Архив событий подключён к шине")
	return nil
}

// Close отписывается от шины и разрывает соединение с MongoDB
func (a *EventArchive) Close() error {
	if a.sub != nil {
		a.sub.Unsubscribe()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
