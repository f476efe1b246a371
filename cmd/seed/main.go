package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Vahe555123/busines/internal/config"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	pg "github.com/Vahe555123/busines/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	pricingRepo := pg.NewPricingRepo(pool)

	// If plans already exist, do nothing.
	existing, err := pricingRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list pricing: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(existing))
		for _, p := range existing {
			fmt.Printf("  - %s (price=%d kopecks)\n", p.DisplayTitle(), p.Price)
		}
		return
	}

	now := time.Now()
	seed := []*model.Pricing{
		{
			ID:          uuid.NewString(),
			Title:       model.LocalizedString{RU: "Старт", EN: "Start", HY: "Սթարտ"},
			Description: model.LocalizedString{RU: "Чат-бот для сайта и базовая автоматизация", EN: "Website chatbot and basic automation"},
			Price:       150_000_00,
			Order:       1,
		},
		{
			ID:          uuid.NewString(),
			Title:       model.LocalizedString{RU: "Бизнес", EN: "Business", HY: "Բիզնես"},
			Description: model.LocalizedString{RU: "Интеграция AI в CRM и поддержку клиентов", EN: "AI integration for CRM and customer support"},
			Price:       390_000_00,
			Order:       2,
			IsPopular:   true,
		},
		{
			ID:          uuid.NewString(),
			Title:       model.LocalizedString{RU: "Корпоративный", EN: "Enterprise", HY: "Կորպորատիվ"},
			Description: model.LocalizedString{RU: "Индивидуальные AI-решения под ключ", EN: "Custom AI solutions end to end"},
			Price:       990_000_00,
			Order:       3,
		},
	}

	for _, p := range seed {
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := pricingRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("seed pricing %q: %v", p.DisplayTitle(), err)
		}
		fmt.Printf("seeded: %s (id=%s, price=%d kopecks)\n", p.DisplayTitle(), p.ID, p.Price)
	}

	fmt.Println("✅ Seeding complete.")
}
