package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService schedules the recurring sweep
type CronService struct {
	cron     *cron.Cron
	sweep    *SweepService
	schedule string
}

// NewCronService creates a new cron service with the given cron schedule
func NewCronService(sweep *SweepService, schedule string) *CronService {
	return &CronService{
		cron:     cron.New(),
		sweep:    sweep,
		schedule: schedule,
	}
}

// Start registers the sweep job and starts the scheduler
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.sweep.Run(context.Background()); err != nil {
			log.Printf("❌ Scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("⏰ Sweep scheduled [%s]", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Sweep scheduler stopped")
}
