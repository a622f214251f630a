package main

import (
	"flag"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storyforge/storyforge-backend/internal/config"
	"github.com/storyforge/storyforge-backend/internal/migration"
	pkglogger "github.com/storyforge/storyforge-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	seed := flag.Bool("seed", false, "populate sample data after migrating")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()
	pkglogger.Init("local")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	defer sqlDB.Close()

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration completed in %s", time.Since(start))

	if *seed {
		if err := migration.Seed(db); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		log.Println("Sample data populated")
	}
}
