package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/types"
)

const (
	// MaxImageDimension is the longest side sent to the vision model
	MaxImageDimension = 1600
	// MaxImageBytes caps the decoded upload size
	MaxImageBytes = 10 << 20
	// MaxImagePixels caps width*height before a full decode
	MaxImagePixels = 40_000_000

	imageKeyPrefix = "fridge-images/"
	jpegQuality    = 85
)

// objectStore is the subset of the S3 client the image service needs
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ImageService validates fridge photos and keeps uploaded ones in S3
type ImageService struct {
	store  objectStore
	bucket string
	logger *zap.SugaredLogger
}

// NewImageService creates a new ImageService instance. s3Config may be nil, in
// which case inline images still work but Store and Load fail with
// ErrImageStoreDisabled.
func NewImageService(s3Config *config.S3Config, logger *zap.SugaredLogger) *ImageService {
	s := &ImageService{logger: logger.Named("image")}
	if s3Config != nil {
		s.store = s3Config.Client
		s.bucket = s3Config.BucketName
	}
	return s
}

// Decode turns a base64 payload, optionally carrying a data URL prefix, into
// a validated image ready for the vision model.
func (s *ImageService) Decode(payload string) (*types.Image, error) {
	data, err := decodeBase64Image(payload)
	if err != nil {
		return nil, err
	}
	return s.prepare(data)
}

// Store validates the payload and uploads it, returning the object key
func (s *ImageService) Store(ctx context.Context, payload string) (string, error) {
	if s.store == nil {
		return "", ErrImageStoreDisabled
	}
	img, err := s.Decode(payload)
	if err != nil {
		return "", err
	}

	key := imageKeyPrefix + uuid.New().String()
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Infow("stored fridge image", "key", key, "bytes", len(img.Data))
	return key, nil
}

// Load fetches a previously stored image by key
func (s *ImageService) Load(ctx context.Context, key string) (*types.Image, error) {
	if s.store == nil {
		return nil, ErrImageStoreDisabled
	}
	if !strings.HasPrefix(key, imageKeyPrefix) {
		return nil, ErrImageNotFound
	}

	out, err := s.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to fetch image from S3: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image from S3: %w", err)
	}
	return s.prepare(data)
}

// prepare checks that data is a supported image and downscales it when
// either side exceeds MaxImageDimension.
func (s *ImageService) prepare(data []byte) (*types.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnreadableImage, MaxImageBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnreadableImage, cfg.Width, cfg.Height, MaxImagePixels)
	}

	if cfg.Width <= MaxImageDimension && cfg.Height <= MaxImageDimension {
		return &types.Image{Data: data, MIMEType: "image/" + format, Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	dst := resize.Thumbnail(MaxImageDimension, MaxImageDimension, src, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}
	bounds := dst.Bounds()
	s.logger.Debugw("downscaled image",
		"from_width", cfg.Width, "from_height", cfg.Height,
		"to_width", bounds.Dx(), "to_height", bounds.Dy(),
	)
	return &types.Image{Data: buf.Bytes(), MIMEType: "image/jpeg", Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// decodeBase64Image strips a data URL prefix and whitespace, restores missing
// padding and decodes.
func decodeBase64Image(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrNoImage
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrInvalidImageEncoding
		}
		payload = payload[idx+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if m := len(payload) % 4; m != 0 {
		payload += strings.Repeat("=", 4-m)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageEncoding, err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return data, nil
}
