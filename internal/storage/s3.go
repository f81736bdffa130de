package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Client maps the folder contract onto an S3 bucket. A folder identifier
// is its full key prefix; a zero-byte marker object pins empty folders so
// find-or-create stays idempotent before the first upload.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

const folderMarker = ".folder"

// NewS3Client creates a client using the default AWS credential chain.
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(cfg)
	return &S3Client{
		client:   cli,
		uploader: manager.NewUploader(cli),
		bucket:   bucket,
	}, nil
}

// folderKey joins a parent prefix and a folder name into a prefix id.
func folderKey(parentID, name string) string {
	return path.Join(strings.Trim(parentID, "/"), name)
}

// FindOrCreateFolder resolves a folder prefix, writing the marker object
// only when the folder does not exist yet.
func (c *S3Client) FindOrCreateFolder(ctx context.Context, name, parentID string) (id string, err error) {
	start := time.Now()
	defer func() { observe("find_or_create_folder", start, err) }()

	id = folderKey(parentID, name)
	marker := id + "/" + folderMarker

	_, err = c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(marker),
	})
	if err == nil {
		return id, nil
	}
	var nf *s3types.NotFound
	if !errors.As(err, &nf) {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(marker),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}
	log.Info().Str("folder", name).Str("prefix", id).Msg("created s3 folder prefix")
	return id, nil
}

// UploadFile stores bytes under the folder prefix and returns the object
// key as the file identifier.
func (c *S3Client) UploadFile(ctx context.Context, data []byte, name, parentFolderID, mimeType string) (id string, err error) {
	start := time.Now()
	defer func() { observe("upload_file", start, err) }()

	key := folderKey(parentFolderID, name)
	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	log.Info().Str("key", key).Int("size", len(data)).Msg("uploaded file to s3")
	return key, nil
}

// ListSubfolders lists immediate child prefixes of a folder.
func (c *S3Client) ListSubfolders(ctx context.Context, parentID string) (folders []Folder, err error) {
	start := time.Now()
	defer func() { observe("list_subfolders", start, err) }()

	prefix := strings.Trim(parentID, "/") + "/"
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	folders = []Folder{}
	for paginator.HasMorePages() {
		page, perr := paginator.NextPage(ctx)
		if perr != nil {
			err = &Error{Op: "list_subfolders", Err: perr}
			return nil, err
		}
		for _, cp := range page.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}
			id := strings.TrimSuffix(*cp.Prefix, "/")
			folders = append(folders, Folder{ID: id, Name: path.Base(id)})
		}
	}
	return folders, nil
}
