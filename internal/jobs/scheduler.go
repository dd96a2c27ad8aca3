// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: еженедельные выплаты комерциям.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/features/shop"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron        *cron.Cron
	shopService *shop.Service
}

// NewScheduler создаёт планировщик задач в часовом поясе tz.
// При недоступной зоне используется UTC.
func NewScheduler(shopService *shop.Service, tz string) *Scheduler {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).WithField("tz", tz).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		shopService: shopService,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Еженедельные выплаты комерциям, воскресенье 00:00
	s.cron.AddFunc("@weekly", func() {
		log.Info("[CRON] Еженедельные выплаты комерциям")
		summary, err := s.shopService.ProcessPayouts(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка обхода выплат")
			return
		}
		log.WithFields(log.Fields{
			"paid":    summary.Paid,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
		}).Info("[CRON] Выплаты комерциям завершены")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик, дожидаясь завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
