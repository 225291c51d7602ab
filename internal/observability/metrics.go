package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atelier_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsPublished counts notifications created by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_notifications_published_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// RankingQueries counts ranking queries served by scope.
	RankingQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_ranking_queries_total",
		Help: "Total number of ranking queries by scope",
	}, []string{"scope"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "atelier_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

const queryStartKey = "observability:query_start"

// InstrumentDB registers GORM callbacks that feed DatabaseQueryLatency.
// The table label comes from the statement, so raw queries without a model
// are recorded under an empty table.
func InstrumentDB(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(tx *gorm.DB) {
		return func(tx *gorm.DB) {
			start, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			begin, ok := start.(time.Time)
			if !ok {
				return
			}
			DatabaseQueryLatency.WithLabelValues(operation, tx.Statement.Table).
				Observe(time.Since(begin).Seconds())
		}
	}

	if err := db.Callback().Create().Before("gorm:create").Register("observability:create_start", before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("observability:create_end", after("create")); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("observability:query_start", before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("observability:query_end", after("query")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("observability:update_start", before); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("observability:update_end", after("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("observability:delete_start", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("observability:delete_end", after("delete")); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("observability:raw_start", before); err != nil {
		return err
	}
	return db.Callback().Raw().After("gorm:raw").Register("observability:raw_end", after("raw"))
}
