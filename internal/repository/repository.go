package repository

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Policy errors surfaced by repository methods. Controllers map these onto
// HTTP statuses (409 conflict, 400 bad request).
var (
	ErrDuplicateFolderName = errors.New("a folder with this name already exists in this location")
	ErrDuplicateImage      = errors.New("image already exists in this project and folder")
	ErrNotProjectMember    = errors.New("assigned user is not a project member")
	ErrAlreadyMember       = errors.New("user is already a member")
	ErrOwnerNotRemovable   = errors.New("cannot remove the owner")
	ErrParentNotFound      = errors.New("parent folder not found")
	ErrSelfParent          = errors.New("cannot set folder as its own parent")
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB         *gorm.DB
	User       *UserRepository
	Workspace  *WorkspaceRepository
	Project    *ProjectRepository
	Folder     *FolderRepository
	Image      *ImageRepository
	Annotation *AnnotationRepository
	AuditLog   *AuditLogRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger) *baseRepository {
	return &baseRepository{db: db, logger: logger}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger) *Repository {
	br := newBaseRepository(db, logger)

	return &Repository{
		DB:         db,
		User:       &UserRepository{baseRepository: br},
		Workspace:  &WorkspaceRepository{baseRepository: br},
		Project:    &ProjectRepository{baseRepository: br},
		Folder:     &FolderRepository{baseRepository: br},
		Image:      &ImageRepository{baseRepository: br},
		Annotation: &AnnotationRepository{baseRepository: br},
		AuditLog:   &AuditLogRepository{baseRepository: br},
	}
}

func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Errorf("withTx Transaction error: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}
