package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver uploads statistics reports under a key prefix, one object per
// run. Keys are date-partitioned: <prefix>/2006/01/02/<runID>.json.
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewArchiver creates an Archiver writing to the client's bucket under
// prefix (may be empty).
func NewArchiver(c *Client, prefix string) *Archiver {
	return &Archiver{
		uploader: manager.NewUploader(c.S3()),
		bucket:   c.Bucket(),
		prefix:   prefix,
	}
}

// ArchiveReport uploads one JSON report and returns the object key.
func (a *Archiver) ArchiveReport(ctx context.Context, runID string, generatedAt time.Time, report []byte) (string, error) {
	key := path.Join(a.prefix, generatedAt.UTC().Format("2006/01/02"), runID+".json")

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(report),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3blob: archive report %s: %w", key, err)
	}
	return key, nil
}
