package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Server bundles the database handle and HTTP engine for callers that
// embed barback instead of running the shipped binary.
type Server struct {
	DB  *gorm.DB
	Gin *gin.Engine

	http *http.Server
}

func (s *Server) InitDb(dsn string) *Server {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		log.Fatal(err)
	}

	s.DB = db

	return s
}

func (s *Server) InitGin() *Server {
	g := gin.Default()

	s.Gin = g

	return s
}

func (s *Server) Ready() bool {
	return s.DB != nil && s.Gin != nil
}

// Start serves on ep until Stop is called. A drained shutdown is not
// reported as a failure.
func (s *Server) Start(ep string) error {
	if !s.Ready() {
		return errors.New("server isn't ready - make sure to init db and gin")
	}

	s.http = &http.Server{Addr: ep, Handler: s.Gin.Handler()}
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop drains in-flight requests before returning.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
