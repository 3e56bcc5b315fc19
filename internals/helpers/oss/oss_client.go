// internals/helpers/oss/oss_client.go
package helper

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"schoolku_web/internals/helpers/logger"
)

// objectPutter: bagian *oss.Bucket yang dipakai di sini.
type objectPutter interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type OSSService struct {
	Bucket     objectPutter
	Endpoint   string
	BucketName string
	PublicBase string // ALI_OSS_PUBLIC_BASE (CDN), opsional
	Prefix     string // mis. "payment-proofs"
	WebP       WebPOptions
}

func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := getEnv("ALI_OSS_ENDPOINT")
	ak := getEnv("ALI_OSS_ACCESS_KEY")
	sk := getEnv("ALI_OSS_SECRET_KEY")
	sts := getEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := getEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// Verifikasi ringan lokasi bucket
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			logger.L().Warn("[OSS] skip location check (AccessDenied)", zap.String("bucket", bucketName))
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		logger.L().Info("[OSS] bucket siap", zap.String("bucket", bucketName), zap.String("location", loc))
	}

	return &OSSService{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: getEnv("ALI_OSS_PUBLIC_BASE"),
		Prefix:     strings.Trim(prefix, "/"),
		WebP:       ProofWebPOptionsFromEnv(),
	}, nil
}

/* =======================================================================
   Upload bukti bayar
======================================================================= */

// UploadProofAsWebP: recompress ke webp lalu simpan di
// <prefix>/<dir>/<nama>_<ts>_<rand>.webp. Mengembalikan URL publik.
func (s *OSSService) UploadProofAsWebP(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("nil file header")
	}
	if fh.Size > MaxProofSize {
		return "", fmt.Errorf("file too large (max %d bytes)", MaxProofSize)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	return s.uploadWebP(ctx, dir, fh.Filename, src)
}

func (s *OSSService) uploadWebP(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	data, err := ConvertProofToWebP(r, filename, s.WebP)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := s.buildObjectKey(dir, base+".webp")

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType("image/webp"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	logger.FromCtx(ctx).Info("📎 bukti bayar tersimpan", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.PublicURL(key), nil
}

/* =======================================================================
   Public URL & key utils
======================================================================= */

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return strings.TrimRight(s.PublicBase, "/") + "/" + key
	}
	if s.Endpoint == "" || s.BucketName == "" {
		return ""
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSService) buildObjectKey(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	parts := make([]string, 0, 3)
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	for _, p := range strings.Split(strings.Trim(dir, "/"), "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, slugify(p))
		}
	}
	ts := time.Now().Format("20060102_150405")
	parts = append(parts, fmt.Sprintf("%s_%s_%s%s", slugify(base), ts, randHex(3), ext))
	return strings.Join(parts, "/")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
