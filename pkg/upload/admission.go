package upload

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/blobx"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/gabriel-vasile/mimetype"
)

var (
	errBadType  = httpx.BadRequest(httpx.CodeInvalidFileType, "Only image files are allowed (jpg, jpeg, png, webp)")
	errTooLarge = httpx.BadRequest(httpx.CodeFileTooLarge, "Image must be 5 MB or smaller")
	errTooBig   = httpx.BadRequest(httpx.CodeFileTooLarge, "Image dimensions are too large")
	errFailed   = httpx.NewError(http.StatusInternalServerError, httpx.CodeUploadFailed, "Image upload failed")
)

// Admission validates and stores the upload field of multipart requests.
type Admission struct {
	store   blobx.Store
	cfg     Config
	observe func(outcome string)
}

// New returns an admission stage writing into store. observe may be nil.
func New(store blobx.Store, cfg Config, observe func(outcome string)) *Admission {
	if observe == nil {
		observe = func(string) {}
	}
	return &Admission{store: store, cfg: cfg.withDefaults(), observe: observe}
}

// Stage runs admission as a pipeline stage.
func (a *Admission) Stage() httpx.Stage {
	return httpx.Stage{Name: "upload", Run: a.admit}
}

// pending is a validated file waiting for the rest of the form.
type pending struct {
	desc Descriptor
	data []byte
	ext  string
	mime string
}

func (a *Admission) admit(r *http.Request) (*http.Request, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r, nil
	}

	// Whole body bound: the file plus a fair allowance for other fields.
	r.Body = http.MaxBytesReader(nil, r.Body, a.cfg.MaxBytes+maxFields*a.cfg.MaxFieldBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, httpx.BadRequest(httpx.CodeValidation, "Malformed multipart body")
	}

	values := url.Values{}
	var file *pending

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, a.bodyError(err)
		}

		if part.FileName() == "" {
			if err := a.readField(part, values); err != nil {
				return nil, err
			}
			continue
		}

		if part.FormName() != a.cfg.Field || file != nil {
			_ = part.Close()
			return nil, httpx.BadRequest(httpx.CodeValidation, "Unexpected file field "+part.FormName())
		}

		file, err = a.readFile(part)
		if err != nil {
			return nil, err
		}
	}

	ctx := r.Context()
	if file != nil {
		res, err := a.persist(ctx, file)
		if err != nil {
			return nil, err
		}
		ctx = withResult(ctx, res)
	}

	out := r.WithContext(ctx)
	form := url.Values{}
	for k, v := range r.URL.Query() {
		form[k] = append(form[k], v...)
	}
	for k, v := range values {
		form[k] = append(form[k], v...)
	}
	out.Form = form
	out.PostForm = values
	out.MultipartForm = &multipart.Form{Value: values, File: map[string][]*multipart.FileHeader{}}
	return out, nil
}

func (a *Admission) readField(part *multipart.Part, values url.Values) error {
	defer part.Close()

	if len(values) >= maxFields {
		return httpx.BadRequest(httpx.CodeValidation, "Too many form fields")
	}

	b, err := io.ReadAll(io.LimitReader(part, a.cfg.MaxFieldBytes+1))
	if err != nil {
		return a.bodyError(err)
	}
	if int64(len(b)) > a.cfg.MaxFieldBytes {
		return httpx.BadRequest(httpx.CodeValidation, "Form field "+part.FormName()+" is too large")
	}
	values.Add(part.FormName(), string(b))
	return nil
}

// readFile checks the declared type, then reads at most MaxBytes+1 bytes,
// then checks what the bytes actually are.
func (a *Admission) readFile(part *multipart.Part) (*pending, error) {
	defer part.Close()

	desc := Descriptor{
		DeclaredMIME: part.Header.Get("Content-Type"),
		FieldName:    part.FormName(),
		Filename:     part.FileName(),
	}

	if !strings.HasPrefix(strings.ToLower(desc.DeclaredMIME), "image/") {
		a.observe(OutcomeBadType)
		return nil, errBadType
	}

	data, err := io.ReadAll(io.LimitReader(part, a.cfg.MaxBytes+1))
	if err != nil {
		return nil, a.bodyError(err)
	}
	desc.Size = int64(len(data))
	if desc.Size > a.cfg.MaxBytes {
		a.observe(OutcomeTooLarge)
		return nil, errTooLarge
	}

	detected := mimetype.Detect(data)
	ext := strings.TrimPrefix(detected.Extension(), ".")
	if !slices.Contains(a.cfg.Allowed, ext) {
		a.observe(OutcomeBadType)
		return nil, errBadType
	}

	return &pending{desc: desc, data: data, ext: ext, mime: detected.String()}, nil
}

func (a *Admission) persist(ctx context.Context, f *pending) (Result, error) {
	log := slogx.FromContext(ctx)

	img, err := a.cfg.Policy.Apply(f.data, f.ext, f.mime)
	if errors.Is(err, blobx.ErrTooManyPixels) {
		a.observe(OutcomeTooLarge)
		log.Info("upload rejected", "reason", "too_many_pixels", "err", err)
		return Result{}, errTooBig
	}
	if err != nil {
		a.observe(OutcomeBadType)
		log.Info("upload rejected", "reason", "undecodable", "err", err)
		return Result{}, errBadType
	}

	key := blobx.NewKey(a.cfg.Folder, img.Ext)

	putCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	u, err := a.store.Put(putCtx, key, img.ContentType, img.Data)
	if err != nil {
		a.observe(OutcomeStoreFailed)
		log.Error("upload store failed", "key", key, "err", err)
		return Result{}, errFailed
	}

	a.observe(OutcomeStored)
	log.Info("upload stored", "key", key, "bytes", len(img.Data), "resized", img.Resized)

	return Result{
		Descriptor:  f.desc,
		URL:         u,
		Key:         key,
		ContentType: img.ContentType,
		Resized:     img.Resized,
	}, nil
}

func (a *Admission) bodyError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		a.observe(OutcomeTooLarge)
		return errTooLarge
	}
	return httpx.BadRequest(httpx.CodeValidation, "Malformed multipart body")
}
