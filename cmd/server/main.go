package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"clausecheck-backend/corpus"
	"clausecheck-backend/embedding"
	"clausecheck-backend/extraction"
	"clausecheck-backend/handlers"
	"clausecheck-backend/llm"
	"clausecheck-backend/service"
	"clausecheck-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()

	// Initialize encoder client
	embedder, err := initEncoder()
	if err != nil {
		log.Fatal("Failed to initialize encoder:", err)
	}

	// Load the rule corpus once; it is shared read-only for the process
	// lifetime. A missing file is a deployment error, unlike corrupt content
	// which degrades to an empty corpus inside the loader.
	rulesPath := os.Getenv("RULES_FILE")
	if rulesPath == "" {
		rulesPath = "./data/legal_rules.json"
	}
	if _, err := os.Stat(rulesPath); err != nil {
		log.Fatalf("Legal rules file not found at %s: %v", rulesPath, err)
	}
	ruleCorpus := corpus.Load(ctx, rulesPath, embedder)

	// Initialize reasoning gateway
	gateway := llm.NewClient(
		os.Getenv("LLM_API_URL"),
		os.Getenv("OPENROUTER_API_KEY"),
		os.Getenv("LLM_MODEL"),
	)
	if os.Getenv("OPENROUTER_API_KEY") == "" {
		log.Println("Warning: OPENROUTER_API_KEY not set")
	}

	// Initialize extraction client
	extractor, err := extraction.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize extraction service: %v", err)
	}

	// Initialize storage
	docStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize services
	analysisService := service.NewAnalysisService(
		service.AnalysisWithRanker(corpus.NewRanker(ruleCorpus, embedder)),
		service.AnalysisWithGateway(gateway),
		service.AnalysisWithConcurrency(analysisConcurrency()),
	)

	contractService := service.NewContractService(
		service.ContractWithEmbedder(embedder),
		service.ContractWithGateway(gateway),
		service.ContractWithStorage(docStorage),
	)

	libraryPath := os.Getenv("CLAUSE_LIBRARY_FILE")
	if libraryPath == "" {
		libraryPath = "./data/clause_library.json"
	}
	contractService.LoadClauseLibrary(ctx, libraryPath)

	// Initialize handlers
	complianceHandler := handlers.NewComplianceHandler(analysisService, extractor)
	riskHandler := handlers.NewRiskHandler(analysisService, extractor)
	contractHandler := handlers.NewContractHandler(contractService)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"rules":  ruleCorpus.Len(),
		})
	})

	// Compliance endpoints
	compliance := r.Group("/compliance")
	{
		compliance.POST("/check_violation", complianceHandler.CheckViolation)
		compliance.POST("/upload", complianceHandler.Upload)
	}

	// Risk endpoints
	risk := r.Group("/risk")
	{
		risk.POST("/check_violation", riskHandler.CheckViolation)
		risk.POST("/upload", riskHandler.Upload)
	}

	// Contract endpoints
	contract := r.Group("/contract")
	{
		contract.POST("/generate", contractHandler.Generate)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initEncoder() (*embedding.Client, error) {
	baseURL := os.Getenv("ENCODER_URL")
	if baseURL == "" {
		log.Fatal("ENCODER_URL environment variable is required")
	}

	client := embedding.NewClient(baseURL, os.Getenv("ENCODER_API_KEY"))
	log.Println("Encoder client initialized")
	return client, nil
}

// analysisConcurrency reads the clause fan-out width. Unset or invalid means
// one worker, which processes clauses strictly in order.
func analysisConcurrency() int {
	raw := os.Getenv("ANALYSIS_CONCURRENCY")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Printf("Warning: invalid ANALYSIS_CONCURRENCY %q, using 1", raw)
		return 1
	}
	return n
}
