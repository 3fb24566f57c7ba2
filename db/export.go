package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// S3Exporter uploads archive files to an S3 bucket. The engine runs
// without it; export is an explicit operation.
type S3Exporter struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Exporter(ctx context.Context, c *core.Conf) (*S3Exporter, error) {
	if c.ExportBucket == "" {
		return nil, fmt.Errorf("export bucket is not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.ExportRegion))
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to load the aws config/reason:%s", err))
		return nil, err
	}
	return &S3Exporter{
		client: s3.NewFromConfig(cfg),
		bucket: c.ExportBucket,
		prefix: c.ExportPrefix,
	}, nil
}

// Export uploads every archive file under archiveDir and returns the
// number of uploaded files. A failed file does not stop the remaining
// uploads; the errors are combined.
func (e *S3Exporter) Export(ctx context.Context, archiveDir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(archiveDir, "jobs-*.jsonl"))
	if err != nil {
		return 0, err
	}
	sort.Strings(files)
	uploaded := 0
	var errs error
	for _, path := range files {
		file, err := os.Open(path)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to open the archive file %s/reason:%s", path, err))
			errs = multierr.Append(errs, err)
			continue
		}
		key := e.prefix + "/" + filepath.Base(path)
		_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(e.bucket),
			Key:    aws.String(key),
			Body:   file,
		})
		file.Close()
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to upload %s to s3://%s/%s/reason:%s",
				path, e.bucket, key, err))
			errs = multierr.Append(errs, err)
			continue
		}
		zap.L().Info(fmt.Sprintf("uploaded %s to s3://%s/%s", path, e.bucket, key))
		uploaded++
	}
	return uploaded, errs
}
