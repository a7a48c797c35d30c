package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tripwindow/database"
	"tripwindow/services"
)

// Scheduler runs the periodic watch refresh and history pruning.
type Scheduler struct {
	Cron      *cron.Cron
	Planner   *services.TripPlanner
	Retention time.Duration
	Ctx       context.Context
	now       func() time.Time
}

// NewScheduler creates a Scheduler whose cron specs include a seconds field.
func NewScheduler(ctx context.Context, p *services.TripPlanner) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Planner: p,
		Ctx:     ctx,
		now:     time.Now,
	}
}

// RegisterAll registers the watch refresh and prune jobs. A blank spec leaves
// that job out; retentionDays < 1 disables pruning.
func (s *Scheduler) RegisterAll(watchCron, pruneCron string, retentionDays int) error {
	if watchCron != "" {
		if _, err := s.Cron.AddFunc(watchCron, s.watchTask); err != nil {
			return fmt.Errorf("register watch task: %w", err)
		}
	}
	if pruneCron != "" && retentionDays > 0 {
		s.Retention = time.Duration(retentionDays) * 24 * time.Hour
		if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
			return fmt.Errorf("register prune task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("✅ scheduler started (%d jobs)", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("✅ scheduler stopped")
}

// RunWatchesNow refreshes every watched search once and reports how many
// refreshes succeeded.
func (s *Scheduler) RunWatchesNow() (int, error) {
	searches, err := database.ListWatchedSearches()
	if err != nil {
		return 0, fmt.Errorf("list watched searches: %w", err)
	}

	refreshed := 0
	for i := range searches {
		if err := s.Ctx.Err(); err != nil {
			return refreshed, err
		}
		search := &searches[i]
		plan, err := s.Planner.Replan(s.Ctx, search)
		if err != nil {
			log.Printf("⚠️  watch %s (%s→%s) refresh failed: %v", search.ID, search.Origin, search.Destination, err)
			continue
		}
		refreshed++
		log.Printf("✅ watch %s refreshed as plan %s", search.ID, plan.ID)
	}
	return refreshed, nil
}

// PruneNow deletes searches older than the retention period.
func (s *Scheduler) PruneNow() (int64, error) {
	if s.Retention <= 0 {
		return 0, nil
	}
	return database.PruneSearches(s.now().Add(-s.Retention))
}

func (s *Scheduler) watchTask() {
	log.Println("🔄 running watch refresh")
	n, err := s.RunWatchesNow()
	if err != nil {
		log.Printf("❌ watch refresh: %v", err)
		return
	}
	log.Printf("✅ watch refresh done, %d searches updated", n)
}

func (s *Scheduler) pruneTask() {
	n, err := s.PruneNow()
	if err != nil {
		log.Printf("❌ prune history: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 pruned %d old searches", n)
	}
}
