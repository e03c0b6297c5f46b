package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phportfolio",
			Subsystem: "content",
			Name:      "resolved_total",
			Help:      "按分类统计的内容解析次数，source 为 remote 或 fallback。",
		},
		[]string{"category", "source"},
	)

	contentFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phportfolio",
			Subsystem: "content",
			Name:      "fallback_total",
			Help:      "远程内容不可用而退回静态内容的次数。",
		},
		[]string{"category"},
	)

	translateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phportfolio",
			Subsystem: "translate",
			Name:      "requests_total",
			Help:      "翻译服务调用次数。",
		},
		[]string{"provider", "result"},
	)

	draftWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phportfolio",
			Subsystem: "drafts",
			Name:      "write_failures_total",
			Help:      "草稿保存失败次数，reason 为 quota 或 error。",
		},
		[]string{"reason"},
	)
)

// ObserveResolved 记录一次分类解析的数据来源。
func ObserveResolved(category string, remote bool) {
	if remote {
		contentResolvedTotal.WithLabelValues(category, "remote").Inc()
		return
	}
	contentResolvedTotal.WithLabelValues(category, "fallback").Inc()
	contentFallbackTotal.WithLabelValues(category).Inc()
}

// ObserveTranslation 记录一次翻译服务调用结果。
func ObserveTranslation(provider string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	translateRequestsTotal.WithLabelValues(provider, result).Inc()
}

// ObserveDraftWriteFailure 记录一次草稿保存失败。
func ObserveDraftWriteFailure(reason string) {
	draftWriteFailuresTotal.WithLabelValues(reason).Inc()
}
