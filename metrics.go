package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// 1回の実行ぶんのメトリクス
// cronから実行してnode_exporterのtextfile collectorで拾う想定
type metrics struct {
	registry *prometheus.Registry

	sessions       *prometheus.CounterVec
	writes         *prometheus.CounterVec
	lastWriteTime  prometheus.Gauge
	lastWriteValue prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nixie_client_sessions_total",
				Help: "時計との接続の試行回数",
			},
			[]string{"result"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nixie_client_writes_total",
				Help: "時刻キャラクタリスティックへの書き込み回数",
			},
			[]string{"result"},
		),
		lastWriteTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nixie_client_last_write_timestamp_seconds",
			Help: "最後に書き込みが確認された時刻 (UNIX秒)",
		}),
		lastWriteValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nixie_client_last_written_minutes",
			Help: "最後に書き込んだ値 (時*60+分)",
		}),
	}

	m.registry.MustRegister(m.sessions, m.writes, m.lastWriteTime, m.lastWriteValue)

	return m
}

func (m *metrics) session(result string) {
	m.sessions.WithLabelValues(result).Inc()
}

func (m *metrics) writeDone(hour, minute uint8, at time.Time) {
	m.writes.WithLabelValues("ok").Inc()
	m.lastWriteTime.Set(float64(at.UnixNano()) / 1e9)
	m.lastWriteValue.Set(float64(int(hour)*60 + int(minute)))
}

func (m *metrics) writeFailed() {
	m.writes.WithLabelValues("error").Inc()
}

// textfile形式で書き出す
func (m *metrics) writeFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, "can't write metrics")
	}
	return nil
}
