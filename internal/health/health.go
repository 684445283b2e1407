package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 2 * time.Second

// CheckFunc проверяет доступность одной зависимости сервиса.
// Контекст ограничен таймаутом, зависший чек не должен вешать probe.
type CheckFunc func(ctx context.Context) error

// CheckResult — исход одной проверки в JSON-ответе.
type CheckResult struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Report — тело ответа /healthz.
type Report struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version,omitempty"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Checks        map[string]CheckResult `json:"checks,omitempty"`
}

// Handler агрегирует проверки зависимостей и отдаёт их состояние по HTTP.
// Без зарегистрированных проверок сервис считается здоровым: in-memory
// конфигурация внешних зависимостей не имеет.
type Handler struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	version string
	started time.Time
}

// NewHandler создаёт Handler с меткой версии сборки.
func NewHandler(version string) *Handler {
	return &Handler{
		checks:  make(map[string]CheckFunc),
		version: version,
		started: time.Now(),
	}
}

// RegisterCheck добавляет проверку зависимости под её именем.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = fn
}

func (h *Handler) runChecks() (map[string]CheckResult, bool) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, fn := range h.checks {
		checks[name] = fn
	}
	h.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	healthy := true
	for name, fn := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		start := time.Now()
		err := fn(ctx)
		cancel()

		result := CheckResult{OK: err == nil, LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			result.Error = err.Error()
			healthy = false
		}
		results[name] = result
	}

	return results, healthy
}

// ServeHTTP отдаёт полный отчёт о состоянии зависимостей.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	results, healthy := h.runChecks()

	report := Report{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Checks:        results,
	}
	code := http.StatusOK
	if !healthy {
		report.Status = "failed"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}

// ReadinessHandler — короткий probe для оркестратора: только код ответа.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if _, healthy := h.runChecks(); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler отвечает 200, пока процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
