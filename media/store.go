package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const (
	KindImages = "images"
	KindVideos = "videos"

	defaultPresignTTL = time.Hour
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Config points the store at an S3 compatible bucket such as Cloudflare R2.
type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
	KeyPrefix       string
}

// Object is an uploaded or listed media file with a presigned download URL.
type Object struct {
	Key          string    `json:"key"`
	Bucket       string    `json:"bucket"`
	URL          string    `json:"url"`
	Size         int64     `json:"size,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	objects   objectAPI
	presigner presignAPI
	bucket    string
	prefix    string
	ttl       time.Duration
	newID     func() string
}

// NewStore builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(client, s3.NewPresignClient(client), cfg), nil
}

func newStore(objects objectAPI, presigner presignAPI, cfg Config) *Store {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Store{
		objects:   objects,
		presigner: presigner,
		bucket:    cfg.Bucket,
		prefix:    cfg.KeyPrefix,
		ttl:       ttl,
		newID:     uuid.NewString,
	}
}

func (s *Store) Bucket() string {
	return s.bucket
}

// KeyFor builds a unique object key:
// <prefix><account>/<images|videos>/<uuid>-<sanitized filename>.
func (s *Store) KeyFor(accountID, filename string) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(strings.ReplaceAll(filename, "\\", "/")), "_")
	account := unsafeNameChars.ReplaceAllString(strings.TrimSpace(accountID), "_")
	if account == "" {
		account = "shared"
	}
	return fmt.Sprintf("%s%s/%s/%s-%s", s.prefix, account, KindFor(filename), s.newID(), name)
}

// Upload stores body under key and returns the object with a presigned URL.
// An empty contentType is derived from the key's extension.
func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (Object, error) {
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}

	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}

	url, err := s.Presign(ctx, key)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, Bucket: s.bucket, URL: url}, nil
}

// Presign returns a time-limited GET URL for key.
func (s *Store) Presign(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return req.URL, nil
}

// List returns the objects under prefix, newest first.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	objects := make([]Object, 0, 32)

	var token *string
	for {
		out, err := s.objects.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}

		for _, item := range out.Contents {
			key := aws.ToString(item.Key)
			if key == "" {
				continue
			}
			url, err := s.Presign(ctx, key)
			if err != nil {
				return nil, err
			}
			objects = append(objects, Object{
				Key:          key,
				Bucket:       s.bucket,
				URL:          url,
				Size:         aws.ToInt64(item.Size),
				LastModified: aws.ToTime(item.LastModified),
			})
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// Delete removes keys and returns how many the bucket reported deleted.
func (s *Store) Delete(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	identifiers := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.objects.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: identifiers, Quiet: aws.Bool(false)},
	})
	if err != nil {
		return 0, fmt.Errorf("delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return len(out.Deleted), fmt.Errorf("delete object %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return len(out.Deleted), nil
}

// KindFor classifies a filename as images or videos.
func KindFor(filename string) string {
	if strings.HasPrefix(ContentTypeFor(filename), "image/") {
		return KindImages
	}
	return KindVideos
}

func ContentTypeFor(filename string) string {
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
