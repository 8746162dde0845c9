package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthInfo is what /healthz reports about the optional collaborators.
type HealthInfo struct {
	Directory              string
	TranscriptionProviders []string
	TranslationProviders   []string
}

var languages = []gin.H{
	{"code": "en", "name": "English"},
	{"code": "es", "name": "Spanish"},
	{"code": "pt", "name": "Portuguese"},
	{"code": "fr", "name": "French"},
	{"code": "de", "name": "German"},
	{"code": "it", "name": "Italian"},
	{"code": "ja", "name": "Japanese"},
	{"code": "ko", "name": "Korean"},
	{"code": "zh", "name": "Chinese"},
	{"code": "ru", "name": "Russian"},
	{"code": "ar", "name": "Arabic"},
	{"code": "hi", "name": "Hindi"},
}

func SetupRouter(signal *SignalController, rooms *RoomController, users *UserController, health HealthInfo) *gin.Engine {
	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"status":    "ok",
			"directory": health.Directory,
			"services": gin.H{
				"transcription": health.TranscriptionProviders,
				"translation":   health.TranslationProviders,
			},
		})
	})

	router.GET("/ws", signal.Serve)

	api := router.Group("/api")

	if users != nil {
		u := api.Group("/users")
		u.POST("", users.CreateUser)
		u.POST("/guest", users.CreateGuest)
		u.GET("/:userID", users.GetUser)
	}

	if rooms != nil {
		r := api.Group("/rooms")
		r.POST("", rooms.CreateRoom)
		r.GET("", rooms.ListRooms)
		r.GET("/:roomID", rooms.GetRoom)
		r.GET("/:roomID/participants", rooms.ListParticipants)
	}

	api.GET("/onboarding/languages", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"languages": languages})
	})

	return router
}
