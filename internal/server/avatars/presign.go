// Package avatars hands out presigned S3 PUT URLs for visitor avatar images.
package avatars

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/google/uuid"
)

// Seams for tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
	presignPutObject      = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Config describes the bucket avatars are uploaded to.
type Config struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	Extensions   []string
	Expiry       time.Duration
}

// Presigner signs avatar uploads. It never talks to S3 itself; the client
// PUTs the image directly to the returned URL.
type Presigner struct {
	cfg        Config
	client     *s3.PresignClient
	extensions map[string]bool
	now        func() time.Time
}

// NewPresigner builds an S3 presign client for cfg. Path-style addressing is
// used so MinIO and other S3-compatible stores work.
func NewPresigner(ctx context.Context, cfg Config) (*Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(cfg.BaseEndpoint, "/"))
		}
		o.UsePathStyle = true
	})

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		extensions[strings.ToLower(e)] = true
	}

	return &Presigner{
		cfg:        cfg,
		client:     newS3PresignClient(client),
		extensions: extensions,
		now:        time.Now,
	}, nil
}

// PresignAvatarUpload returns a one-off upload URL for filename and the URL
// the avatar will be served from. Unsupported extensions wrap
// common.ErrValidation.
func (p *Presigner) PresignAvatarUpload(ctx context.Context, accountID uuid.UUID, filename string) (*models.AvatarUpload, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !p.extensions[ext] {
		return nil, fmt.Errorf("%w: unsupported avatar type %q", common.ErrValidation, ext)
	}

	key := p.storageKey(accountID, ext)
	bucket := p.cfg.Bucket

	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.cfg.Expiry))
	if err != nil {
		return nil, fmt.Errorf("presign avatar: %w", err)
	}

	avatarURL, err := p.objectURL(req.URL, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("avatar url: %w", err)
	}

	return &models.AvatarUpload{
		Key:       key,
		UploadURL: req.URL,
		AvatarURL: avatarURL,
	}, nil
}

// objectURL is where the uploaded object is served from. Without a custom
// endpoint it is the presigned URL minus its signature query.
func (p *Presigner) objectURL(presigned, bucket, key string) (string, error) {
	if p.cfg.BaseEndpoint != "" {
		return strings.TrimRight(p.cfg.BaseEndpoint, "/") + "/" + bucket + "/" + key, nil
	}

	u, err := url.Parse(presigned)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("presigned url %q is not absolute", presigned)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func (p *Presigner) storageKey(accountID uuid.UUID, ext string) string {
	d := p.now().UTC()
	return fmt.Sprintf("avatars/%d/%02d/%s/%s%s", d.Year(), d.Month(), accountID, uuid.New(), ext)
}
