package main

import (
	"context"
	"flag"
	"log"

	"familytree/internal/config"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"
	"familytree/internal/mailer"
	"familytree/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables/collections before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema and indexes, don't seed data")
	clearData := flag.Bool("clear-data", false, "Clear all members and settings (keep schema and accounts)")
	sample := flag.Bool("sample", false, "Seed a small sample family under the root")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logFile, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	if *clearData {
		log.Printf("🧹 Clearing data only (store: %s, environment: %s, prefix: %s)", cfg.StoreBackend, cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (store: %s, environment: %s, prefix: %s)", cfg.StoreBackend, cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding (store: %s, environment: %s, prefix: %s)", cfg.StoreBackend, cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	var target *seedTarget

	switch cfg.StoreBackend {
	case config.StorePostgres:
		target, err = preparePostgres(ctx, cfg, logger, *dropTables, *clearData)
	case config.StoreMongo:
		target, err = prepareMongo(ctx, cfg, *dropTables, *clearData)
	case config.StoreJSON:
		target, err = prepareJSON(cfg, logger, *dropTables || *clearData)
	default:
		log.Fatalf("Unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if err != nil {
		log.Fatalf("Failed to prepare %s store: %v", cfg.StoreBackend, err)
	}
	defer target.close()

	if *schemaOnly || *clearData {
		log.Println("✅ Done")
		return
	}

	memberService := service.NewMemberService(target.members, cfg.UploadURLPrefix, logger)
	authService := service.NewAuthService(service.AuthConfig{
		Users:       target.users,
		ResetTokens: target.resetTokens,
		Mailer:      mailer.NewLogMailer(logger),
		Logger:      logger,
	})

	// Admin account
	if cfg.DefaultAdminPassword != "" {
		if err := authService.EnsureUser(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
			log.Fatalf("Failed to seed admin %s: %v", cfg.DefaultAdminEmail, err)
		}
		log.Printf("✅ Admin account ready: %s", cfg.DefaultAdminEmail)
	} else {
		log.Println("⚠️  DEFAULT_ADMIN_PASSWORD not set, skipping admin account")
	}

	// Root member
	root, err := memberService.EnsureRoot(ctx, cfg.SeedRootName)
	if err != nil {
		log.Fatalf("Failed to seed root member: %v", err)
	}
	if root == nil {
		log.Println("✅ Tree already has members, no root created")
		if *sample {
			log.Println("⚠️  Skipping sample family on a non-empty tree")
		}
	} else {
		log.Printf("✅ Root member: %s (ID: %s)", root.Name, root.ID)
		if *sample {
			seedSample(ctx, memberService, root)
		}
	}

	log.Println("🎉 Seeding complete!")
}

// seedTarget holds the repositories seeding writes to
type seedTarget struct {
	members     repositories.MemberRepository
	users       repositories.UserRepository
	resetTokens repositories.ResetTokenRepository
	close       func()
}

type sampleMember struct {
	name     string
	children []sampleMember
}

// sampleFamily is added below the root with -sample
var sampleFamily = []sampleMember{
	{name: "محمد", children: []sampleMember{
		{name: "أحمد", children: []sampleMember{{name: "يوسف"}, {name: "مريم"}}},
		{name: "خالد"},
	}},
	{name: "عبدالله", children: []sampleMember{
		{name: "سارة"},
		{name: "عمر", children: []sampleMember{{name: "ليلى"}}},
	}},
}

func seedSample(ctx context.Context, members services.MemberService, root *models.Member) {
	log.Println("📝 Seeding sample family...")
	count := 0
	var add func(parentID string, list []sampleMember)
	add = func(parentID string, list []sampleMember) {
		for _, s := range list {
			m, err := members.CreateMember(ctx, &models.CreateMemberRequest{Name: s.name, ParentID: &parentID})
			if err != nil {
				log.Printf("❌ Failed to create member '%s': %v", s.name, err)
				continue
			}
			count++
			add(m.ID, s.children)
		}
	}
	add(root.ID, sampleFamily)
	log.Printf("✅ Created %d sample members", count)
}
