package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pantryml/recipegen/internal/api"
	"github.com/pantryml/recipegen/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(recipeHandler *api.RecipeHandler, corsOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(corsOrigins))

	v1 := router.Group("/api/v1")
	recipeHandler.RegisterRoutes(v1)

	return router
}
