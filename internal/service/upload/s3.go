package upload

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures the object storage transport
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Transport uploads file bodies to an S3-compatible bucket
type S3Transport struct {
	client *minio.Client
	bucket string
	prefix string
	region string
}

// NewS3Transport creates a MinIO client from cfg
func NewS3Transport(cfg S3Config) (*S3Transport, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &S3Transport{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (t *S3Transport) EnsureBucket(ctx context.Context) error {
	exists, err := t.client.BucketExists(ctx, t.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", t.bucket, err)
	}
	if !exists {
		if err := t.client.MakeBucket(ctx, t.bucket, minio.MakeBucketOptions{Region: t.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", t.bucket, err)
		}
	}
	return nil
}

// ObjectKey is where the upload with id is stored
func (t *S3Transport) ObjectKey(id, name string) string {
	return path.Join(t.prefix, id, path.Base(name))
}

func (t *S3Transport) Start(ctx context.Context, id string, f File, report func(float64), done func(error)) func() {
	ctx, cancel := context.WithCancel(ctx)
	if f.Body == nil {
		cancel()
		done(errors.New("file has no body"))
		return func() {}
	}

	go func() {
		defer cancel()
		opts := minio.PutObjectOptions{
			ContentType: f.ContentType,
			Progress:    &progressReader{total: f.Size, report: report},
		}
		_, err := t.client.PutObject(ctx, t.bucket, t.ObjectKey(id, f.Name), f.Body, f.Size, opts)
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		if err != nil {
			done(fmt.Errorf("upload object: %w", err))
			return
		}
		done(nil)
	}()
	return cancel
}

// progressReader receives the byte counts minio has sent and reports
// them as a percentage of total
type progressReader struct {
	total  int64
	report func(float64)

	mu   sync.Mutex
	sent int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	p.mu.Lock()
	p.sent += int64(len(b))
	sent := p.sent
	p.mu.Unlock()

	if p.total > 0 {
		p.report(float64(sent) * 100 / float64(p.total))
	}
	return len(b), nil
}
