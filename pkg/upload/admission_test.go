package upload_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/blobx"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/upload"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func smallPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// paddedPNG is a valid PNG followed by junk up to size bytes. Decoders stop
// at IEND so it still reads as a 10x10 image.
func paddedPNG(t *testing.T, size int) []byte {
	t.Helper()
	b := smallPNG(t, 10, 10)
	return append(b, make([]byte, size-len(b))...)
}

// hugePNG declares w x h in its IHDR and carries no pixel data.
func hugePNG(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type captured struct {
	called  bool
	result  upload.Result
	hasFile bool
	name    string
}

func serve(t *testing.T, a *upload.Admission, req *http.Request) (*httptest.ResponseRecorder, *captured) {
	t.Helper()
	c := &captured{}
	h := httpx.Pipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.result, c.hasFile = upload.FromContext(r.Context())
		c.name = r.FormValue("product_name")
		w.WriteHeader(http.StatusCreated)
	}), a.Stage())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, c
}

func TestAdmitFourMiBPNG(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	var outcomes []string
	a := upload.New(store, upload.Config{}, func(o string) { outcomes = append(outcomes, o) })

	req := multipartRequest(t, map[string]string{"product_name": "Mug"}, &filePart{
		field: "product_image", name: "mug.png", contentType: "image/png", data: paddedPNG(t, 4*mib),
	})
	rec, c := serve(t, a, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, c.called)
	require.True(t, c.hasFile)
	require.Equal(t, "Mug", c.name)
	require.Equal(t, int64(4*mib), c.result.Size)
	require.Equal(t, "image/png", c.result.DeclaredMIME)
	require.Equal(t, "mug.png", c.result.Filename)
	require.True(t, strings.HasPrefix(c.result.Key, "ecommerce-images/"))
	require.True(t, strings.HasSuffix(c.result.Key, ".png"))
	require.Equal(t, "https://cdn.test/"+c.result.Key, c.result.URL)
	require.Equal(t, 1, store.Puts())
	require.Equal(t, []string{upload.OutcomeStored}, outcomes)
}

func TestAdmitRejectsNonImageDeclaredType(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4"),
	})
	rec, c := serve(t, a, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), httpx.CodeInvalidFileType)
	require.False(t, c.called)
	require.Zero(t, store.Puts())
}

func TestAdmitRejectsOversizedFileWithoutStoring(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "big.png", contentType: "image/png", data: paddedPNG(t, 6*mib),
	})
	rec, c := serve(t, a, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), httpx.CodeFileTooLarge)
	require.False(t, c.called)
	require.Zero(t, store.Puts())
}

func TestAdmitLimitIsInclusive(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "edge.png", contentType: "image/png", data: paddedPNG(t, upload.DefaultMaxBytes),
	})
	rec, _ := serve(t, a, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = multipartRequest(t, nil, &filePart{
		field: "product_image", name: "edge.png", contentType: "image/png", data: paddedPNG(t, upload.DefaultMaxBytes+1),
	})
	rec, _ = serve(t, a, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, store.Puts())
}

func TestAdmitRejectsSpoofedContent(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "x.png", contentType: "image/png", data: []byte("just some text, not a picture"),
	})
	rec, _ := serve(t, a, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), httpx.CodeInvalidFileType)
	require.Zero(t, store.Puts())
}

func TestAdmitRejectsHugeDimensions(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	var outcomes []string
	a := upload.New(store, upload.Config{}, func(o string) { outcomes = append(outcomes, o) })

	// No session cookie: admission runs before authentication.
	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "bomb.png", contentType: "image/png", data: hugePNG(12000, 12000),
	})
	rec, c := serve(t, a, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), httpx.CodeFileTooLarge)
	require.False(t, c.called)
	require.Zero(t, store.Puts())
	require.Equal(t, []string{upload.OutcomeTooLarge}, outcomes)
}

func TestAdmitResizesLargeImage(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "product_image", name: "wide.png", contentType: "image/png", data: smallPNG(t, 600, 300),
	})
	rec, c := serve(t, a, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, c.result.Resized)

	obj, ok := store.Get(c.result.Key)
	require.True(t, ok)
	cfg, err := png.DecodeConfig(bytes.NewReader(obj.Data))
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Width)
	require.Equal(t, 250, cfg.Height)
}

func TestAdmitWithoutFilePassesThrough(t *testing.T) {
	store := blobx.NewMemoryStore("https://cdn.test")
	a := upload.New(store, upload.Config{}, nil)

	rec, c := serve(t, a, multipartRequest(t, map[string]string{"product_name": "Mug"}, nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, c.called)
	require.False(t, c.hasFile)
	require.Equal(t, "Mug", c.name)
	require.Zero(t, store.Puts())
}

func TestAdmitIgnoresNonMultipart(t *testing.T) {
	a := upload.New(blobx.NewMemoryStore(""), upload.Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_name":"Mug"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, c := serve(t, a, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, c.called)
	require.False(t, c.hasFile)
}

func TestAdmitRejectsUnexpectedFileField(t *testing.T) {
	a := upload.New(blobx.NewMemoryStore(""), upload.Config{}, nil)

	req := multipartRequest(t, nil, &filePart{
		field: "avatar", name: "x.png", contentType: "image/png", data: smallPNG(t, 2, 2),
	})
	rec, _ := serve(t, a, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket on fire")
}

type slowStore struct{}

func (slowStore) Put(ctx context.Context, _, _ string, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// disconnectStore cancels the request context as the write starts, as a
// client hanging up mid-upload would, and records what the write saw.
type disconnectStore struct {
	cancel context.CancelFunc
	err    error
}

func (s *disconnectStore) Put(ctx context.Context, _, _ string, _ []byte) (string, error) {
	s.cancel()
	<-ctx.Done()
	s.err = ctx.Err()
	return "", s.err
}

func TestAdmitStoreFailures(t *testing.T) {
	cases := map[string]blobx.Store{
		"error":   brokenStore{},
		"timeout": slowStore{},
	}
	for name, store := range cases {
		t.Run(name, func(t *testing.T) {
			var outcomes []string
			a := upload.New(store, upload.Config{Timeout: 20 * time.Millisecond}, func(o string) { outcomes = append(outcomes, o) })

			req := multipartRequest(t, nil, &filePart{
				field: "product_image", name: "x.png", contentType: "image/png", data: smallPNG(t, 4, 4),
			})
			rec, c := serve(t, a, req)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			require.Contains(t, rec.Body.String(), httpx.CodeUploadFailed)
			require.NotContains(t, rec.Body.String(), "fire")
			require.False(t, c.called)
			require.Equal(t, []string{upload.OutcomeStoreFailed}, outcomes)
		})
	}

	t.Run("client gone", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := &disconnectStore{cancel: cancel}

		var outcomes []string
		a := upload.New(store, upload.Config{Timeout: time.Minute}, func(o string) { outcomes = append(outcomes, o) })

		req := multipartRequest(t, nil, &filePart{
			field: "product_image", name: "x.png", contentType: "image/png", data: smallPNG(t, 4, 4),
		}).WithContext(ctx)

		start := time.Now()
		rec, c := serve(t, a, req)

		require.Less(t, time.Since(start), 10*time.Second)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), httpx.CodeUploadFailed)
		require.False(t, c.called)
		require.ErrorIs(t, store.err, context.Canceled)
		require.NotErrorIs(t, store.err, context.DeadlineExceeded)
		require.Equal(t, []string{upload.OutcomeStoreFailed}, outcomes)
	})
}
