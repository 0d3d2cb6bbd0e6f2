package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"medishift_backend/internal/database"
	"medishift_backend/internal/router"
	"medishift_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	utils.InitLogger()
	utils.InitJWT(utils.Getenv("JWT_SECRET", ""))

	dbCfg := database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "medishift_user"),
		Password:   utils.Getenv("DB_PASSWORD", "medishift_password"),
		Name:       utils.Getenv("DB_NAME", "medishift_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	}
	db, err := database.InitDB(dbCfg)
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		log.Fatalf("Failed to initialize database: %v", err)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbCfg.Host, "name": dbCfg.Name})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
