package main

import (
	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/database"
	"github.com/raven-med/radtag/internal/env"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/util"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	// citext backs case-insensitive emails.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS citext").Error; err != nil {
		logger.Panic(err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Workspace{},
		&model.WorkspaceMember{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Folder{},
		&model.Image{},
		&model.Annotation{},
		&model.AnnotationHistory{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Panic(err)
	}

	logger.Info("Migration complete")
}
