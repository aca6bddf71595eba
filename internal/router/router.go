package router

import (
	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack/internal/handler"
)

type Dependencies struct {
	CodecHandler *handler.CodecHandler
}

func Register(r *gin.Engine, d Dependencies) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	algorithms := r.Group("/algorithms")
	{
		algorithms.GET("", d.CodecHandler.List)
		algorithms.PUT("/current", d.CodecHandler.Select)
		algorithms.GET("/:name", d.CodecHandler.Get)
	}

	r.POST("/compress", d.CodecHandler.Compress)
	r.POST("/decompress", d.CodecHandler.Decompress)
	r.POST("/stats", d.CodecHandler.Stats)
}
