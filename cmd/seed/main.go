package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegram-event-scheduler/internal/config"
	pg "telegram-event-scheduler/internal/infra/db/postgres"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/usecase"
)

// Seeds a couple of weekly templates so a fresh deployment has something to
// materialize before anyone runs /newweekly.
func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	txm := pg.NewTxManager(pool)
	userUC := usecase.NewUserUseCase(pg.NewUserRepo(pool), txm, logger)
	scaffoldUC := usecase.NewScaffoldUseCase(pg.NewScaffoldRepo(pool), pg.NewEventRepo(pool), txm, cfg.Location(), logger)

	// If templates already exist, do nothing
	existing, err := scaffoldUC.ListAll(ctx)
	if err != nil {
		log.Fatalf("list templates: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d templates already present. No changes.\n", len(existing))
		for _, sc := range existing {
			fmt.Printf("  - %s (%s %s, capacity=%d, active=%v)\n", sc.Title, sc.Weekday, sc.StartClock, sc.Capacity, sc.Active)
		}
		return
	}

	// Templates need an owner. Telegram IDs are sequential and nowhere near
	// this range, so the sentinel cannot collide with a real account.
	owner, err := userUC.RegisterOrFetch(ctx, 424242424242, "seed", "Seed", "")
	if err != nil {
		log.Fatalf("seed owner: %v", err)
	}

	seed := []struct {
		Title    string
		Location string
		Weekday  time.Weekday
		Clock    string
		Capacity int
		Cost     int64
	}{
		{"Tuesday padel", "City Padel, court 2", time.Tuesday, "19:00", 4, 4800},
		{"Thursday padel", "City Padel, court 1", time.Thursday, "20:00", 4, 4800},
	}

	for _, s := range seed {
		sc, err := scaffoldUC.Create(ctx, usecase.CreateScaffoldInput{
			Title:      s.Title,
			Location:   s.Location,
			Weekday:    s.Weekday,
			StartClock: s.Clock,
			Duration:   cfg.Group.EventDuration,
			Capacity:   s.Capacity,
			CostCents:  s.Cost,
			LeadDays:   cfg.Group.LeadDays,
			CreatedBy:  owner.ID,
		})
		if err != nil {
			log.Fatalf("create template %q: %v", s.Title, err)
		}
		fmt.Printf("seeded: %s (id=%s, %s %s, capacity=%d)\n", sc.Title, sc.ID, sc.Weekday, sc.StartClock, sc.Capacity)
	}

	fmt.Println("✅ Seeding complete.")
}
