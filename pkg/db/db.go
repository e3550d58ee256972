package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	p "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openbrewed/barback/config"
	"github.com/openbrewed/barback/pkg/utils"
)

var gdb *gorm.DB

//go:embed migrations/*.sql
var migrations embed.FS

func dsn() string {
	dbConfig := config.GetDb()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbConfig.Username,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Database,
	)
}

// Init runs the embedded schema migrations and opens the shared GORM
// handle. It must be called once before GetDb.
func Init() {
	log := utils.GetLogger()

	pdb, err := sql.Open("postgres", dsn())
	if err != nil {
		log.Fatal("unable to open database for migrations", err)
	}
	driver, err := p.WithInstance(pdb, &p.Config{})
	if err != nil {
		log.Fatal("unable to prepare migration driver", err)
	}
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatal("unable to read embedded migrations", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		log.Fatal("unable to initialize migrations", err)
	}
	if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
		log.Info("[DB]: Schema already up to date")
	} else if err != nil {
		log.Fatal("unable to apply migrations", err)
	}

	gdb, err = gorm.Open(postgres.Open(dsn()), &gorm.Config{})
	if err != nil {
		log.Fatal("unable to connect to database", err)
	}

	dbConfig := config.GetDb()
	if dbConfig.DetailLog {
		gdb = gdb.Debug()
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("unable to access connection pool", err)
	}
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
}

func GetDb() *gorm.DB {
	return gdb
}

func CloseDb() {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
