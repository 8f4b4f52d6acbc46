package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/blockscript/internal/eventbus"
	"github.com/annel0/blockscript/internal/storage"
)

const timeFormat = "15:04:05"

func main() {
	var (
		natsURL    = flag.String("nats", "nats://localhost:4222", "NATS server URL")
		mongoURI   = flag.String("mongo", "mongodb://localhost:27017", "MongoDB URI (для команды recent)")
		command    = flag.String("cmd", "tail", "Command: tail, recent")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		regions    = flag.String("regions", "", "Region names filter (comma-separated)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
	)
	flag.Parse()

	filter := eventbus.Filter{
		Types:   parseStringList(*eventTypes),
		Regions: parseStringList(*regions),
	}

	switch *command {
	case "tail":
		if err := tailEvents(*natsURL, filter); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "recent":
		if err := showRecent(*mongoURI, int64(*limit)); err != nil {
			log.Fatalf("❌ Recent failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, recent")
		os.Exit(1)
	}
}

// tailEvents подписывается на стрим и выводит события в реальном времени
func tailEvents(url string, f eventbus.Filter) error {
	fmt.Printf("🎬 Tailing events from %s (types=%v, regions=%v)\n", url, f.Types, f.Regions)

	bus, err := eventbus.NewJetStreamBus(url, "", 24*time.Hour)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	sub, err := bus.Subscribe(ctx, f, func(ctx context.Context, ev *eventbus.Envelope) {
		printEvent(ev)
		count++
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	// Ждём Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Printf("\n📊 Total events: %d\n", count)
	return nil
}

// showRecent выводит последние события из архива MongoDB
func showRecent(uri string, limit int64) error {
	fmt.Printf("📋 Recent events (limit: %d)\n", limit)

	archive, err := storage.NewEventArchive(storage.MongoConfig{URI: uri})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer archive.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := archive.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	for _, ev := range events {
		printEvent(ev)
	}
	fmt.Printf("\n📊 Total events: %d\n", len(events))
	return nil
}

// printEvent выводит событие в читаемом формате
func printEvent(ev *eventbus.Envelope) {
	timestamp := ev.Timestamp.Local().Format(timeFormat)
	fmt.Printf("[%s] %s/%s [%s] %s\n",
		timestamp,
		ev.Region,
		ev.Source,
		ev.EventType,
		ev.ID)
	if ev.Actor != "" {
		fmt.Printf("  Actor: %s\n", ev.Actor)
	}
	if len(ev.Payload) > 0 {
		fmt.Printf("  Payload: %s\n", string(ev.Payload))
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
