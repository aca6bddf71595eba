// Command huffpackd serves the huffpack codecs over HTTP.
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/config"
	"github.com/seiflotfy/huffpack/internal/handler"
	"github.com/seiflotfy/huffpack/internal/logger"
	"github.com/seiflotfy/huffpack/internal/router"
	"github.com/seiflotfy/huffpack/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.New()

	m := huffpack.New(
		huffpack.WithLogger(logg),
		huffpack.WithDefault(cfg.Algorithm),
		huffpack.WithCodeCacheSize(cfg.CacheSize),
	)
	codecSvc := service.NewCodecService(m, logg)
	codecH := handler.NewCodecHandler(codecSvc, cfg.MaxBody)

	r := gin.Default()
	router.Register(r, router.Dependencies{
		CodecHandler: codecH,
	})

	logg.Infof("starting server at %s with %s", cfg.Addr, m.CurrentName())
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
