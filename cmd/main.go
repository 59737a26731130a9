package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"rag_service/internal/cache"
	"rag_service/internal/config"
	"rag_service/internal/service/ingest"
	"rag_service/internal/service/rag"
	"rag_service/internal/store"
	"rag_service/internal/transport/http/handler"
)

func main() {
	color.Cyan("🚀 Starting RAG Service...")

	color.Yellow("📦 Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		color.Green("✅ .env loaded successfully")
	}

	cfg := config.Load()

	color.Blue("🔧 Configuration:")
	log.Printf("   MODEL_NAME: %s", cfg.ModelName)
	log.Printf("   PROVIDER:   %s", cfg.Provider)
	log.Printf("   PORT:       %s", cfg.Port)
	log.Printf("   INDEX_PATH: %s", cfg.IndexPath)
	log.Printf("   TOP_K:      %d", cfg.TopK)

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not configured, embeddings will not work")
	}

	// Vector store, index reloaded from disk when present
	color.Yellow("🔌 Opening vector store...")
	embed := store.NewEmbeddingFunc(os.Getenv("OPENAI_API_KEY"), os.Getenv("EMBEDDING_BASE_URL"))
	idx, err := store.New(cfg.IndexPath, embed)
	if err != nil {
		log.Fatalf("❌ Failed to open vector store: %v", err)
	}
	log.Printf("   documents indexed: %d", idx.Count())

	// Answer cache: postgres when DATABASE_URL is set, memory otherwise
	var answers cache.Cache
	if cfg.DatabaseURL != "" {
		pgCache, err := cache.NewPostgresCache(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, using memory cache: %v", err)
			answers = cache.NewMemoryCache()
		} else {
			log.Println("Using PostgreSQL answer cache")
			answers = pgCache
		}
	} else {
		log.Println("DATABASE_URL not configured, using memory answer cache")
		answers = cache.NewMemoryCache()
	}

	color.Yellow("🔌 Initializing services...")
	engine := rag.NewEngine(cfg.ModelName, cfg.Provider, cfg.TopK, cfg.CacheTTL, idx, answers)
	ingestSvc := ingest.NewService(idx)
	color.Green("✅ Services initialized")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/ask", handler.NewAskHandler(engine))
	r.Post("/ingest", handler.NewIngestHandler(ingestSvc))
	r.Post("/ingest/pdf", handler.NewIngestPDFHandler(ingestSvc))

	// Healthcheck
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := ":" + cfg.Port
	color.Magenta("🌐 Server starting on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
