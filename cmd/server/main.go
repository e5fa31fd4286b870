// YaoFang 药房排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/internal/config"
	"github.com/paiban/yaofang/internal/database"
	"github.com/paiban/yaofang/internal/handler"
	"github.com/paiban/yaofang/internal/metrics"
	"github.com/paiban/yaofang/internal/repository"
	"github.com/paiban/yaofang/pkg/logger"
	"github.com/paiban/yaofang/pkg/planning"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("YaoFang 药房排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库不可用时以无状态模式继续，排班结果只返回不落库
	var planningRepo *repository.PlanningRepository
	var store *handler.RosterStore
	var rosterHandler *handler.RosterHandler
	var txRunner repository.TxRunner
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("数据库不可用，以无状态模式启动")
	} else {
		defer db.Close()
		planningRepo = repository.NewPlanningRepository(db)
		employeeRepo := repository.NewEmployeeRepository(db)
		constraintRepo := repository.NewConstraintRepository(db)
		templateRepo := repository.NewShiftTemplateRepository(db)
		store = &handler.RosterStore{
			Employees:   employeeRepo,
			Constraints: constraintRepo,
			Templates:   templateRepo,
		}
		rosterHandler = handler.NewRosterHandler(employeeRepo, constraintRepo, templateRepo)
		txRunner = db
	}

	rules := planning.LegalRules{
		MaxHoursPerDay:    cfg.Planning.MaxHoursPerDay,
		MaxHoursPerWeek:   cfg.Planning.MaxHoursPerWeek,
		MinHoursTolerance: cfg.Planning.MinHoursTolerance,
	}
	weights := planning.DefaultScoreWeights()
	gen := planning.NewGeneratorWith(rules, weights)

	planningHandler := handler.NewPlanningHandler(gen, planningRepo, store, txRunner)
	replacementHandler := handler.NewReplacementHandler(rules, weights)

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "disconnected"
		if db != nil {
			if err := db.Health(r.Context()); err == nil {
				dbStatus = "ok"
			} else {
				dbStatus = "error"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"yaofang","database":"%s"}`, dbStatus)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "YaoFang 药房排班引擎 API v1",
			"endpoints": {
				"planning": {
					"generate": "POST /api/v1/planning/generate",
					"generate_stored": "POST /api/v1/planning/generate/stored",
					"validate": "POST /api/v1/planning/validate",
					"replacements": "POST /api/v1/planning/replacements",
					"replacements_apply": "POST /api/v1/planning/replacements/apply",
					"shifts": "GET /api/v1/planning/shifts"
				},
				"roster": {
					"employees": "GET|POST /api/v1/employees",
					"constraints": "GET|PUT /api/v1/constraints",
					"templates": "GET|POST /api/v1/templates"
				},
				"stats": {
					"workload": "POST /api/v1/stats/workload"
				},
				"rules": "GET /api/v1/rules"
			}
		}`))
	})

	// 排班生成 API
	mux.HandleFunc("/api/v1/planning/generate", planningHandler.Generate)

	// 按库存数据排班 API（数据库模式）
	mux.HandleFunc("/api/v1/planning/generate/stored", planningHandler.GenerateStored)

	// 排班法规校验 API
	mux.HandleFunc("/api/v1/planning/validate", planningHandler.Validate)

	// 替班推荐 API
	mux.HandleFunc("/api/v1/planning/replacements", replacementHandler.Suggest)

	// 已落库排班的查询与改派 API（数据库模式）
	mux.HandleFunc("/api/v1/planning/shifts", planningHandler.ListShifts)
	mux.HandleFunc("/api/v1/planning/replacements/apply", planningHandler.ApplyReplacement)

	// 工时报表 API
	mux.HandleFunc("/api/v1/stats/workload", handler.WorkloadHandler)

	// 规则清单 API
	mux.HandleFunc("/api/v1/rules", handler.RulesHandler(gen))

	// 花名册管理 API（数据库模式）
	if rosterHandler != nil {
		mux.HandleFunc("/api/v1/employees", rosterHandler.Employees)
		mux.HandleFunc("/api/v1/employees/", rosterHandler.EmployeeByID)
		mux.HandleFunc("/api/v1/constraints", rosterHandler.Constraints)
		mux.HandleFunc("/api/v1/templates", rosterHandler.Templates)
		mux.HandleFunc("/api/v1/templates/", rosterHandler.TemplateByID)
	}

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> handler
	if cfg.API.RateLimit > 0 {
		globalRateLimiter = NewRateLimiter(float64(cfg.API.RateLimit))
	}
	root := requestIDMiddleware(rateLimitMiddleware(corsMiddleware(loggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID, _ := r.Context().Value("request_id").(string)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		metrics.RecordRequest(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
