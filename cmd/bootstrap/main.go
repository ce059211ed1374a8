// Package main 系统初始化入口：建表 + 向量集合
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/wire"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	skipVector := flag.Bool("skip-vector", false, "skip Milvus collection setup")
	flag.Parse()

	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 1. 建表（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	sqlDB, err := dataLayer.PgClient.SqlDB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	fmt.Println("Applying database schema...")
	if _, err := sqlDB.ExecContext(ctx, schemaSQL); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
	fmt.Println("Database schema applied.")

	// 2. 向量集合
	if !*skipVector {
		fullLayer, cleanupFull, err := wire.InitializeDataLayer(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to initialize vector layer: %v", err)
		}
		defer cleanupFull()

		fmt.Println("Ensuring papers collection...")
		if err := fullLayer.VectorRepo.EnsurePapersCollection(ctx); err != nil {
			log.Fatalf("failed to ensure papers collection: %v", err)
		}
		fmt.Println("Papers collection ready.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
