package model

import "gorm.io/datatypes"

// Image references a DICOM instance stored on the external PACS server by its
// orthanc id. Uniqueness is scoped to (orthanc_id, project_id, folder_id): the
// same PACS instance may be attached to several folders or projects as
// distinct rows.
type Image struct {
	BaseModel
	OrthancID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_image_scope" json:"orthancId"`
	Filename  string `gorm:"type:varchar(255);not null" json:"filename"`

	ProjectID uint    `gorm:"not null;uniqueIndex:idx_image_scope" json:"projectId"`
	Project   Project `json:"-"`

	FolderID *uint   `gorm:"uniqueIndex:idx_image_scope" json:"folderId"`
	Folder   *Folder `json:"-"`

	UploaderID uint `gorm:"not null" json:"uploaderId"`
	Uploader   User `gorm:"foreignKey:UploaderID" json:"uploader"`

	AssignedUserID *uint `json:"assignedUserId"`
	AssignedUser   *User `gorm:"foreignKey:AssignedUserID" json:"assignedUser,omitempty"`

	DicomMetadata datatypes.JSON `gorm:"type:jsonb" json:"dicomMetadata,omitempty"`
	ThumbnailURL  string         `gorm:"type:text" json:"thumbnailUrl,omitempty"`

	Annotations []Annotation `gorm:"constraint:OnDelete:CASCADE" json:"annotations,omitempty"`
}

func (i Image) TableName() string {
	return "images"
}
