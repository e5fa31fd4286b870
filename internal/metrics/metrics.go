// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// kind 指标类型
type kind int

const (
	kindCounter kind = iota
	kindGauge
)

// metric 单个指标及其样本
type metric struct {
	name    string
	help    string
	kind    kind
	labels  []string
	samples map[string]float64
}

// Registry 指标注册表
type Registry struct {
	mu      sync.RWMutex
	order   []string
	metrics map[string]*metric

	histMu    sync.RWMutex
	durations map[string]*durationHist
}

// durationHist 延迟直方图
type durationHist struct {
	buckets []float64
	counts  []uint64
	sum     float64
	total   uint64
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default 获取全局注册表
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			metrics:   make(map[string]*metric),
			durations: make(map[string]*durationHist),
		}
		defaultRegistry.register("yaofang_http_requests_total", "HTTP请求总数", kindCounter, []string{"method", "path", "status"})
		defaultRegistry.register("yaofang_planning_generation_total", "排班生成次数", kindCounter, []string{"status"})
		defaultRegistry.register("yaofang_planning_conflicts_total", "排班冲突数", kindCounter, []string{"severity"})
		defaultRegistry.register("yaofang_coverage_rate", "排班覆盖率", kindGauge, nil)
		defaultRegistry.register("yaofang_legal_compliance", "法规合规率", kindGauge, nil)
		defaultRegistry.register("yaofang_balance_score", "工时均衡度", kindGauge, nil)
		defaultRegistry.registerHist("yaofang_planning_generation_duration_seconds",
			[]float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0})
		defaultRegistry.registerHist("yaofang_http_request_duration_seconds",
			[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0})
	})
	return defaultRegistry
}

func (r *Registry) register(name, help string, k kind, labels []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
	r.metrics[name] = &metric{
		name:    name,
		help:    help,
		kind:    k,
		labels:  labels,
		samples: make(map[string]float64),
	}
}

func (r *Registry) registerHist(name string, buckets []float64) {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	r.durations[name] = &durationHist{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)+1),
	}
}

// Add 给计数器增加值
func (r *Registry) Add(name string, delta float64, labelValues ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[name]; ok {
		m.samples[strings.Join(labelValues, "\x1f")] += delta
	}
}

// Set 设置仪表值
func (r *Registry) Set(name string, value float64, labelValues ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[name]; ok {
		m.samples[strings.Join(labelValues, "\x1f")] = value
	}
}

// Observe 记录延迟观测值
func (r *Registry) Observe(name string, seconds float64) {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	h, ok := r.durations[name]
	if !ok {
		return
	}
	placed := false
	for i, b := range h.buckets {
		if seconds <= b {
			h.counts[i]++
			placed = true
			break
		}
	}
	if !placed {
		h.counts[len(h.buckets)]++
	}
	h.total++
	h.sum += seconds
}

// Handler 返回Prometheus文本格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		r := Default()
		r.mu.RLock()
		for _, name := range r.order {
			m := r.metrics[name]
			typ := "counter"
			if m.kind == kindGauge {
				typ = "gauge"
			}
			fmt.Fprintf(w, "# HELP %s %s\n", m.name, m.help)
			fmt.Fprintf(w, "# TYPE %s %s\n", m.name, typ)

			keys := make([]string, 0, len(m.samples))
			for k := range m.samples {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if k == "" {
					fmt.Fprintf(w, "%s %g\n", m.name, m.samples[k])
					continue
				}
				vals := strings.Split(k, "\x1f")
				var pairs []string
				for i, label := range m.labels {
					v := ""
					if i < len(vals) {
						v = vals[i]
					}
					pairs = append(pairs, fmt.Sprintf("%s=%q", label, v))
				}
				fmt.Fprintf(w, "%s{%s} %g\n", m.name, strings.Join(pairs, ","), m.samples[k])
			}
		}
		r.mu.RUnlock()

		r.histMu.RLock()
		histNames := make([]string, 0, len(r.durations))
		for name := range r.durations {
			histNames = append(histNames, name)
		}
		sort.Strings(histNames)
		for _, name := range histNames {
			h := r.durations[name]
			fmt.Fprintf(w, "# TYPE %s histogram\n", name)
			var cumulative uint64
			for i, b := range h.buckets {
				cumulative += h.counts[i]
				fmt.Fprintf(w, "%s_bucket{le=\"%g\"} %d\n", name, b, cumulative)
			}
			fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", name, h.total)
			fmt.Fprintf(w, "%s_sum %g\n", name, h.sum)
			fmt.Fprintf(w, "%s_count %d\n", name, h.total)
		}
		r.histMu.RUnlock()
	})
}

// RecordRequest 记录HTTP请求指标
func RecordRequest(method, path string, status int, duration time.Duration) {
	r := Default()
	r.Add("yaofang_http_requests_total", 1, method, path, fmt.Sprintf("%d", status))
	r.Observe("yaofang_http_request_duration_seconds", duration.Seconds())
}

// RecordGeneration 记录一次排班生成
func RecordGeneration(success bool, errorCount, warningCount int, duration time.Duration) {
	r := Default()
	status := "success"
	if !success {
		status = "failure"
	}
	r.Add("yaofang_planning_generation_total", 1, status)
	r.Add("yaofang_planning_conflicts_total", float64(errorCount), "error")
	r.Add("yaofang_planning_conflicts_total", float64(warningCount), "warning")
	r.Observe("yaofang_planning_generation_duration_seconds", duration.Seconds())
}

// SetGenerationStats 更新最近一次生成的统计仪表
func SetGenerationStats(coverageRate, legalCompliance int, balanceScore float64) {
	r := Default()
	r.Set("yaofang_coverage_rate", float64(coverageRate))
	r.Set("yaofang_legal_compliance", float64(legalCompliance))
	r.Set("yaofang_balance_score", balanceScore)
}
