package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockscript",
		Subsystem: "engine",
		Name:      "ticks_total",
		Help:      "Общее число обработанных тиков.",
	})
	placementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockscript",
		Subsystem: "engine",
		Name:      "placements_total",
		Help:      "Общее число установленных блоков.",
	})
	placementsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blockscript",
		Subsystem: "engine",
		Name:      "placements_cancelled_total",
		Help:      "Установок блоков, отменённых обработчиками before-события.",
	})
	playersOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockscript",
		Subsystem: "engine",
		Name:      "players_online",
		Help:      "Количество подключённых участников.",
	})
)

func init() {
	prometheus.MustRegister(ticksTotal, placementsTotal, placementsCancelled, playersOnline)
}
