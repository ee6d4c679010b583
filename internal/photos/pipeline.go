// Package photos turns submitted photo payloads into hosted references.
package photos

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/internal/worker"
	"github.com/greencampus/facility-reports/storage"
	"github.com/greencampus/facility-reports/utils"
	"github.com/greencampus/facility-reports/utils/generator"
	"github.com/greencampus/facility-reports/utils/pool"
	"github.com/greencampus/facility-reports/utils/validator"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// hostConcurrency photos of one submission processed in parallel
const hostConcurrency = 4

// Options pipeline settings
type Options struct {
	BaseURL      string
	MaxBytes     int64
	MaxDimension int
	JPEGQuality  int
}

// OptionsFrom reads pipeline settings from the application config
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		BaseURL:      cfg.BaseURL(),
		MaxBytes:     cfg.PhotoMaxBytes(),
		MaxDimension: cfg.PhotoMaxDimension,
		JPEGQuality:  cfg.PhotoJPEGQuality,
	}
}

// Pipeline decodes, downscales and stores photos
type Pipeline struct {
	storage storage.Provider
	opts    Options
	paths   *generator.PathGenerator
	claims  *claimTable
	now     func() time.Time
}

// NewPipeline 创建图片处理管线
func NewPipeline(provider storage.Provider, opts Options) *Pipeline {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	return &Pipeline{
		storage: provider,
		opts:    opts,
		paths:   generator.NewPathGenerator(),
		claims:  newClaimTable(),
		now:     time.Now,
	}
}

// HostAll converts every inline photo into a hosted reference. Photos
// that are already hosted pass through untouched. The returned keys are
// the objects written by this call, for Discard when the caller fails
// to persist the entry.
func (p *Pipeline) HostAll(ctx context.Context, photos []models.Photo) ([]models.Photo, []string, error) {
	out := make([]models.Photo, len(photos))
	written := make([]string, len(photos))
	batch := p.claims.newBatch()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hostConcurrency)

	for i, photo := range photos {
		if !photo.Inline() {
			out[i] = photo
			continue
		}
		g.Go(func() error {
			hosted, created, err := p.hostInline(gctx, photo, generator.PrefixPhotos, batch)
			if err != nil {
				return photoError(i, err)
			}
			out[i] = hosted
			if created {
				written[i] = hosted.PublicID
			}
			return nil
		})
	}

	err := g.Wait()

	keys := make([]string, 0, len(written))
	for _, key := range written {
		if key != "" {
			keys = append(keys, key)
		}
	}
	if err != nil {
		p.Discard(keys)
		return nil, nil, err
	}
	return out, keys, nil
}

// hostInline decodes one inline photo and stores it under prefix
func (p *Pipeline) hostInline(ctx context.Context, photo models.Photo, prefix string, batch uint64) (models.Photo, bool, error) {
	if decodedLen(photo.Data) > p.opts.MaxBytes+2 {
		return models.Photo{}, false, errTooLarge
	}
	raw, _, err := DecodeData(photo.Data)
	if err != nil {
		return models.Photo{}, false, err
	}

	hosted, created, err := p.store(ctx, raw, prefix, batch)
	if err != nil {
		return models.Photo{}, false, err
	}
	hosted.OriginalName = photo.OriginalName
	if photo.UploadedAt != nil {
		hosted.UploadedAt = photo.UploadedAt
	}
	return hosted, created, nil
}

// StoreUpload stores a streamed upload, such as a multipart profile
// picture, under prefix
func (p *Pipeline) StoreUpload(ctx context.Context, r io.Reader, originalName, prefix string) (models.Photo, error) {
	var buf bytes.Buffer
	copyBuf := pool.Get()
	defer pool.Put(copyBuf)

	if _, err := io.CopyBuffer(&buf, io.LimitReader(r, p.opts.MaxBytes+1), *copyBuf); err != nil {
		return models.Photo{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(buf.Len()) > p.opts.MaxBytes {
		return models.Photo{}, apperr.Validation(tooLargeMessage(p.opts.MaxBytes))
	}

	photo, _, err := p.store(ctx, buf.Bytes(), prefix, p.claims.newBatch())
	if err != nil {
		return models.Photo{}, uploadError(err, p.opts.MaxBytes)
	}
	photo.OriginalName = originalName
	return photo, nil
}

var (
	errTooLarge    = errors.New("photo too large")
	errUnsupported = errors.New("unsupported photo type")
)

// store sniffs, transforms, hashes and saves raw image bytes. created is
// false when identical content was already stored under the same key.
func (p *Pipeline) store(ctx context.Context, raw []byte, prefix string, batch uint64) (photo models.Photo, created bool, err error) {
	if int64(len(raw)) > p.opts.MaxBytes {
		return models.Photo{}, false, errTooLarge
	}

	ok, mimeType, err := validator.IsImage(bytes.NewReader(raw))
	if err != nil {
		return models.Photo{}, false, fmt.Errorf("failed to sniff photo: %w", err)
	}
	if !ok {
		return models.Photo{}, false, errUnsupported
	}

	data, mimeType, err := transform(raw, mimeType, p.opts.MaxDimension, p.opts.JPEGQuality)
	if err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			return models.Photo{}, false, err
		}
		return models.Photo{}, false, fmt.Errorf("%w: %v", errUnsupported, err)
	}

	sum := blake3.Sum256(data)
	now := p.now()
	ids := p.paths.Generate(prefix, hex.EncodeToString(sum[:]), utils.GetSafeExtension(mimeType), now)

	p.claims.touch(ids.StoragePath, batch, now)
	exists, err := p.storage.Exists(ctx, ids.StoragePath)
	if err != nil {
		return models.Photo{}, false, fmt.Errorf("failed to check photo %s: %w", ids.StoragePath, err)
	}
	if !exists {
		created = true
		if err := p.storage.SaveWithContext(ctx, ids.StoragePath, bytes.NewReader(data)); err != nil {
			return models.Photo{}, false, fmt.Errorf("failed to save photo %s: %w", ids.StoragePath, err)
		}
	}

	uploadedAt := now.UTC()
	return models.Photo{
		URL:        utils.BuildPhotoURL(p.opts.BaseURL, ids.StoragePath),
		PublicID:   ids.StoragePath,
		MimeType:   mimeType,
		Size:       int64(len(data)),
		UploadedAt: &uploadedAt,
	}, created, nil
}

// Discard removes stored objects in the background, skipping any that
// another submission picked up after they were written
func (p *Pipeline) Discard(keys []string) {
	if len(keys) == 0 {
		return
	}
	worker.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		p.claims.release(ctx, p.storage, keys)
	})
}

// Open streams a stored photo
func (p *Pipeline) Open(ctx context.Context, key string) (io.ReadSeeker, error) {
	return p.storage.GetWithContext(ctx, key)
}

func tooLargeMessage(max int64) string {
	return fmt.Sprintf("Photo exceeds the %d MB limit", max>>20)
}

// photoError maps a pipeline failure for the photo at index i onto a
// client-facing error
func photoError(i int, err error) error {
	n := i + 1
	switch {
	case errors.Is(err, errTooLarge):
		return apperr.Validation(fmt.Sprintf("Photo %d exceeds the size limit", n))
	case errors.Is(err, errUnsupported), errors.Is(err, ErrImageTooLarge):
		return apperr.Validation(fmt.Sprintf("Photo %d is not a supported image", n))
	case errors.Is(err, ErrBadEncoding), errors.Is(err, ErrEmptyPayload):
		return apperr.Validation(fmt.Sprintf("Photo %d could not be decoded", n))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		log.Printf("[Photos] Failed to host photo %d: %v", n, err)
		return apperr.Persistence(err)
	}
}

func uploadError(err error, max int64) error {
	switch {
	case errors.Is(err, errTooLarge):
		return apperr.Validation(tooLargeMessage(max))
	case errors.Is(err, errUnsupported), errors.Is(err, ErrImageTooLarge):
		return apperr.Validation("Only image files are allowed")
	default:
		log.Printf("[Photos] Failed to store upload: %v", err)
		return apperr.Persistence(err)
	}
}
