package appcontext

import (
	"github.com/minio/minio-go/v7"
	"github.com/raven-med/radtag/internal/auth"
	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/mailer"
	"github.com/raven-med/radtag/internal/pacs"
	"github.com/raven-med/radtag/internal/repository"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	// PACS stores and serves the DICOM binaries; the database only keeps
	// references into it.
	PACS pacs.Client

	// S3 holds generated thumbnails.
	S3 *minio.Client
}
