package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/api"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/config"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/database"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/middleware"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/repository"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/services"

	"gorm.io/gorm"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)
	seedAchievementDefinitions(db)

	// Initialize Repositories
	articleRepo := repository.NewArticleRepository(db)
	readFactRepo := repository.NewReadFactRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize Services. The unlock listener is where push delivery would
	// hook in; for now it only logs.
	achievementService := services.NewAchievementService(achievementRepo, func(userID string, def models.AchievementDefinition) {
		log.Printf("INFO: [Main] Unlock notification queued for userID %s: %q (+%d points).", userID, def.Title, def.RewardPoints)
	})
	progressService := services.NewProgressService(articleRepo, readFactRepo, achievementService)
	searchService := services.NewSearchService(
		articleRepo,
		config.AppConfig.Search.MaxResults,
		config.AppConfig.Search.ExcerptRadius,
	)
	completionService := services.NewCompletionService(
		articleRepo,
		config.AppConfig.Completion.APIKey,
		config.AppConfig.Completion.BaseURL,
		config.AppConfig.Completion.Model,
		time.Duration(config.AppConfig.Completion.TimeoutSeconds)*time.Second,
		nil, // Default fallback policy
	)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(searchService, progressService, achievementService, completionService)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.Category{},
		&models.Article{},
		&models.Tag{},
		&models.ArticleTag{},
		&models.ReadFact{},
		&models.AchievementDefinition{},
		&models.UserAchievementProgress{},
		&models.AchievementEventCredit{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

// seedAchievementDefinitions inserts the built-in achievement set on first
// start. Existing rows are left untouched so operators can tune targets.
func seedAchievementDefinitions(db *gorm.DB) {
	definitions := []models.AchievementDefinition{
		{Code: services.AchievementCodeFirstRead, Title: "First Steps", Description: "Read your first article.", Category: models.AchievementCategoryReading, Target: 1, RewardPoints: 10},
		{Code: "bookworm", Title: "Bookworm", Description: "Read 25 articles.", Category: models.AchievementCategoryReading, Target: 25, RewardPoints: 100},
		{Code: "quiz_rookie", Title: "Quiz Rookie", Description: "Complete 5 quizzes.", Category: models.AchievementCategoryQuiz, Target: 5, RewardPoints: 50},
		{Code: "social_butterfly", Title: "Social Butterfly", Description: "Leave 10 comments or likes.", Category: models.AchievementCategorySocial, Target: 10, RewardPoints: 50},
		{Code: "explorer", Title: "Explorer", Description: "Perform 100 actions of any kind.", Category: models.AchievementCategoryGlobal, Target: 100, RewardPoints: 200},
	}
	for _, def := range definitions {
		var existing models.AchievementDefinition
		result := db.Where(models.AchievementDefinition{Code: def.Code}).Attrs(def).FirstOrCreate(&existing)
		if result.Error != nil {
			log.Fatalf("FATAL: [Main] Failed to seed achievement definition %q: %v", def.Code, result.Error)
		}
	}
	log.Printf("INFO: [Main] Seeded %d achievement definitions.", len(definitions))
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/search", handler.SearchHandler)

		articleGroup := apiGroup.Group("/articles")
		{
			articleGroup.POST("/:articleID/read", handler.MarkReadHandler)
			articleGroup.POST("/:articleID/companion", handler.CompanionHandler)
		}

		progressGroup := apiGroup.Group("/progress")
		{
			progressGroup.GET("/:userID", handler.OverallProgressHandler)
			progressGroup.GET("/:userID/category/:categoryID", handler.CategoryProgressHandler)
			progressGroup.GET("/:userID/recent", handler.RecentlyReadHandler)
		}

		achievementGroup := apiGroup.Group("/achievements")
		{
			achievementGroup.POST("/event", handler.AchievementEventHandler)
			achievementGroup.GET("/:userID", handler.ListAchievementsHandler)
			achievementGroup.POST("/:userID/:achievementID/seen", handler.AchievementSeenHandler)
		}
	}
}
