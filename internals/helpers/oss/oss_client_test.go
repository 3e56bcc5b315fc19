package helper

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	keys []string
	data [][]byte
	err  error
}

func (b *fakeBucket) PutObject(key string, r io.Reader, _ ...oss.Option) error {
	if b.err != nil {
		return b.err
	}
	all, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.keys = append(b.keys, key)
	b.data = append(b.data, all)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestConvertProofToWebP(t *testing.T) {
	t.Run("DownscalesLargeImage", func(t *testing.T) {
		out, err := ConvertProofToWebP(bytes.NewReader(pngBytes(t, 400, 200)), "kuitansi.png", WebPOptions{MaxW: 100, MaxH: 100, Quality: 75})
		require.NoError(t, err)

		img, err := webp.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
		assert.Equal(t, 50, img.Bounds().Dy())
	})

	t.Run("KeepsSmallImage", func(t *testing.T) {
		out, err := ConvertProofToWebP(bytes.NewReader(pngBytes(t, 40, 30)), "a.png", WebPOptions{MaxW: 100, MaxH: 100})
		require.NoError(t, err)

		img, err := webp.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
	})

	t.Run("RejectsUnknownFormat", func(t *testing.T) {
		_, err := ConvertProofToWebP(strings.NewReader("hello, not an image"), "notes.txt", WebPOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		_, err := ConvertProofToWebP(bytes.NewReader(nil), "a.png", WebPOptions{})
		assert.Error(t, err)
	})
}

func TestPublicURL(t *testing.T) {
	s := &OSSService{Endpoint: "https://oss-ap-southeast-5.aliyuncs.com", BucketName: "schoolku"}
	assert.Equal(t, "https://schoolku.oss-ap-southeast-5.aliyuncs.com/a/b.webp", s.PublicURL("a/b.webp"))
	assert.Equal(t, "", s.PublicURL(""))

	s.PublicBase = "https://cdn.schoolku.test/"
	assert.Equal(t, "https://cdn.schoolku.test/a/b.webp", s.PublicURL("a/b.webp"))
}

func TestBuildObjectKey(t *testing.T) {
	s := &OSSService{Prefix: "payment-proofs"}
	key := s.buildObjectKey("/School A/spp/", "Bukti Transfer_01.webp")

	assert.Regexp(t, regexp.MustCompile(`^payment-proofs/school-a/spp/bukti-transfer-01_\d{8}_\d{6}_[0-9a-f]{6}\.webp$`), key)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "bukti-bayar-2024", slugify(" Bukti Bayar_2024! "))
	assert.Equal(t, "file", slugify("***"))
}

func TestUploadWebP(t *testing.T) {
	bucket := &fakeBucket{}
	s := &OSSService{Bucket: bucket, PublicBase: "https://cdn.test", Prefix: "proofs", WebP: WebPOptions{MaxW: 50, MaxH: 50}}

	url, err := s.uploadWebP(context.Background(), "sch-1/spp", "kuitansi.png", bytes.NewReader(pngBytes(t, 80, 80)))
	require.NoError(t, err)
	require.Len(t, bucket.keys, 1)
	assert.True(t, strings.HasPrefix(bucket.keys[0], "proofs/sch-1/spp/kuitansi_"))
	assert.True(t, strings.HasSuffix(bucket.keys[0], ".webp"))
	assert.Equal(t, "https://cdn.test/"+bucket.keys[0], url)

	failing := &OSSService{Bucket: &fakeBucket{err: errors.New("denied")}}
	_, err = failing.uploadWebP(context.Background(), "x", "k.png", bytes.NewReader(pngBytes(t, 10, 10)))
	assert.Error(t, err)
}
