package router

import (
	"github.com/gin-gonic/gin"

	"polar.sh/ghsync/internal/http/handler"
)

func WebhookRouter(router *gin.RouterGroup, handler *handler.GitHubWebhookHandler) {
	router.POST("/github", handler.HandleEvent)
}
