package util

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

func GetThumbnailDirectoryPath(projectId uint) string {
	return fmt.Sprintf("projects/%d/thumbnails", projectId)
}

func createBucketIfNotExists(s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(context.Background(), bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Add a prefix to the object name
	// For example, if the name is "thumb.png" and the prefix is "projects/123/thumbnails",
	// the resulting name will be "projects/123/thumbnails/thumb.png"
	DirectoryPath string
	UniquePrefix  bool
	ContentType   string
	Bucket        string
	S3            *minio.Client
}

// UploadBytesToS3 stores an in-memory payload and returns the upload info.
func UploadBytesToS3(ctx context.Context, data []byte, name string, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := createBucketIfNotExists(fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	objectName := prepareFileName(name, fuo)

	info, err := fuo.S3.PutObject(
		ctx,
		fuo.Bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: fuo.ContentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload object to S3: %w", err)
	}

	return info, nil
}

// PresignedObjectURL generates a presigned GET URL for a stored object.
func PresignedObjectURL(ctx context.Context, s3 *minio.Client, bucket, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := s3.PresignedGetObject(ctx, bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

// Generates the final object name with uniqueness and prefix
func prepareFileName(originalName string, fuo *FileUploadOptions) string {
	fileName := originalName

	if fuo != nil {
		if fuo.UniquePrefix {
			fileName = AddUniquePrefixToFileName(originalName)
		}

		if fuo.DirectoryPath != "" {
			fileName = filepath.Join(fuo.DirectoryPath, fileName)
		}
	}

	return fileName
}
