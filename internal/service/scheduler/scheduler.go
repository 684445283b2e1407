package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// TimerScheduler доставляет отложенные команды через таймеры процесса.
// Используется сагой для дедлайна автоистечения резервирования: команда
// адресуется саге и срабатывает, только если её не отменили раньше.
//
// Реализация не переживает рестарт процесса; durable-планировщик —
// внешний коллаборатор с тем же контрактом.
type TimerScheduler struct {
	bus    domain.CommandBus
	logger *log.Entry

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New создаёт планировщик поверх шины команд.
func New(bus domain.CommandBus, logger *log.Entry) *TimerScheduler {
	if logger == nil {
		logger = log.WithField("component", "scheduler")
	}
	return &TimerScheduler{
		bus:    bus,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule планирует доставку команды на момент at и возвращает токен отмены.
// Момент в прошлом означает немедленную доставку.
func (s *TimerScheduler) Schedule(cmd domain.Command, at time.Time) (string, error) {
	token := uuid.NewString()
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.timers[token] = time.AfterFunc(delay, func() {
		s.fire(token, cmd)
	})
	s.mu.Unlock()

	return token, nil
}

// Cancel отменяет запланированную доставку. Неизвестный или уже сработавший
// токен — безопасный no-op.
func (s *TimerScheduler) Cancel(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[token]; ok {
		timer.Stop()
		delete(s.timers, token)
	}
}

// Stop останавливает все запланированные доставки (graceful shutdown).
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, timer := range s.timers {
		timer.Stop()
		delete(s.timers, token)
	}
}

func (s *TimerScheduler) fire(token string, cmd domain.Command) {
	s.mu.Lock()
	delete(s.timers, token)
	s.mu.Unlock()

	if err := s.bus.Send(cmd); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"command":      cmd.CommandType(),
			"aggregate_id": cmd.AggregateID(),
		}).Warn("deferred command delivery failed")
	}
}

var _ domain.CommandScheduler = (*TimerScheduler)(nil)
