package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"pcb-shop/app"
	"pcb-shop/config"
	_ "pcb-shop/docs"
)

var (
	application *app.App
	once        sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		config.LoadConfig()
		application = app.New()
	})
}

// Handler is the serverless entrypoint. Idle sessions are evicted on each call since no
// background goroutine survives between invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	application.Sessions.Evict()
	application.Router.ServeHTTP(w, r)
}
