package main

import (
	"context"
	"log"
	"os"
	"time"

	"pdf-rag-be/pkg/database"
	"pdf-rag-be/pkg/vectorstore"
	"pdf-rag-be/pkg/vectorstore/pgvector"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, nil)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Step 1: extension + table, same path the server takes on startup.
	log.Println("Step 1: Creating vector extension and collection table...")
	engine, err := pgvector.NewEngine(ctx, db)
	if err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}
	defer engine.Close()

	// Step 2: indexes GORM tags cannot express.
	log.Println("Step 2: Creating indexes...")
	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + vectorstore.CollectionName + `_metadata ON ` + vectorstore.CollectionName + ` USING gin (metadata);`,
		`CREATE INDEX IF NOT EXISTS idx_` + vectorstore.CollectionName + `_document_name ON ` + vectorstore.CollectionName + ` ((metadata->>'document_name'));`,
	}
	for _, sql := range indexSQL {
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v", err)
		}
	}

	count, err := engine.Count(ctx)
	if err != nil {
		log.Fatalf("Error: collection not readable after migration: %v", err)
	}
	log.Printf("✅ Success: collection %s ready (%d chunks).", vectorstore.CollectionName, count)
}
