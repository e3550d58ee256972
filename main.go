package main

import (
	"context"
	"html/template"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/openbrewed/barback/config"
	"github.com/openbrewed/barback/pkg/api"
	"github.com/openbrewed/barback/pkg/api/routers"
	"github.com/openbrewed/barback/pkg/datamigrations"
	"github.com/openbrewed/barback/pkg/db"
	"github.com/openbrewed/barback/pkg/grpcserver"
	"github.com/openbrewed/barback/pkg/utils"

	"time"

	"embed"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed pkg/views/menu.html
var menuTemplate embed.FS

func main() {
	initConfig()
	initLogger()
	initDb()
	initServer()
}

func initConfig() {
	if _, err := config.LoadConfig(); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func initLogger() {
	utils.InitLoggerOnce()
}

func initDb() {
	db.Init()
	datamigrations.BackfillRecipeArrays(db.GetDb())
}

func initServer() {
	serverConfig := config.GetServer()
	gin.SetMode(gin.DebugMode)
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: false,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))

	funcMap := template.FuncMap{
		"PartsBar":   utils.PartsBar,
		"TotalParts": utils.TotalParts,
	}
	templ, err := template.New("").Funcs(funcMap).ParseFS(menuTemplate, "pkg/views/menu.html")
	if err != nil {
		log.Fatalf("error parsing templates: %v", err)
	}
	router.SetHTMLTemplate(templ)

	routers.RegisterRouters(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpcConfig := config.GetGrpc()
	if grpcConfig.Enabled {
		healthServer := grpcserver.NewHealthServer(db.GetDb())
		go func() {
			if err := healthServer.Start(ctx, grpcConfig.Port); err != nil {
				utils.GetLogger().Error("[GRPC]: health listener stopped", err)
			}
		}()
	}

	server := &api.Server{DB: db.GetDb(), Gin: router}
	go func() {
		utils.GetLogger().Info("[HTTP]: serving on " + serverConfig.Port)
		if err := server.Start(serverConfig.Port); err != nil {
			log.Fatalf("error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.GetLogger().Info("[HTTP]: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		utils.GetLogger().Error("[HTTP]: shutdown incomplete", err)
	}
	db.CloseDb()
}
