package images

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
)

// Reasons carried in the details of an INVALID_INPUT upload error.
const (
	ReasonUnsupportedType = "unsupported_type"
	ReasonTooLarge        = "too_large"
	ReasonEmpty           = "empty"
)

// DefaultMaxBytes is the default upload size ceiling (5 MiB).
const DefaultMaxBytes = 5 << 20

// DefaultAllowedTypes is the default MIME allow-list.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the binary object storage boundary.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// File is an image supplied by the user.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Policy bounds what the uploader accepts.
type Policy struct {
	MaxBytes     int64
	AllowedTypes []string
}

// DefaultPolicy returns the 5 MiB jpeg/png/gif/webp policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxBytes:     DefaultMaxBytes,
		AllowedTypes: slices.Clone(DefaultAllowedTypes),
	}
}

// Uploader validates images and writes them to an ObjectStore.
type Uploader struct {
	store  ObjectStore
	policy Policy
	logger *slog.Logger
	now    func() time.Time
	newID  func() (uuid.UUID, error)
}

// NewUploader creates an uploader. Zero policy fields take their defaults.
func NewUploader(store ObjectStore, policy Policy, logger *slog.Logger) *Uploader {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = DefaultMaxBytes
	}
	if len(policy.AllowedTypes) == 0 {
		policy.AllowedTypes = slices.Clone(DefaultAllowedTypes)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewV7,
	}
}

// Upload validates f, stores it under a fresh key and returns its public URL.
//
// Validation failures return INVALID_INPUT before any storage call. A storage
// failure returns UPLOAD_FAILED; there is exactly one write attempt.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	contentType, err := u.Check(f)
	if err != nil {
		return "", err
	}

	key, err := u.objectKey(contentType, f.Name)
	if err != nil {
		return "", domainerrors.UploadFailed(err, "failed to allocate object key")
	}

	putErr := u.store.Put(ctx, key, f.Data, contentType)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", domainerrors.Abandoned(ctxErr, "image upload abandoned")
	}
	if putErr != nil {
		u.logger.Error("image upload failed", "key", key, "error", putErr)
		return "", domainerrors.UploadFailed(putErr, "failed to upload image")
	}

	url := u.store.PublicURL(key)
	u.logger.Debug("image uploaded", "key", key, "bytes", len(f.Data), "content_type", contentType)
	return url, nil
}

// Check validates f against the policy and returns its content type.
// Checks run in order: type, size, emptiness. The type is always sniffed from
// the bytes; a declared type must be allowed and agree with what was sniffed.
func (u *Uploader) Check(f File) (string, error) {
	declared := declaredType(f.ContentType)
	if declared != "" && !u.allowed(declared) {
		return "", u.unsupported(declared)
	}

	contentType := declared
	if len(f.Data) > 0 {
		contentType, _, _ = strings.Cut(mimetype.Detect(f.Data).String(), ";")
		if !u.allowed(contentType) {
			return "", u.unsupported(contentType)
		}
		if declared != "" && declared != contentType {
			return "", domainerrors.InvalidInput(
				fmt.Sprintf("image is declared as %s but its content is %s", declared, contentType),
				ReasonUnsupportedType,
			)
		}
	}

	if int64(len(f.Data)) > u.policy.MaxBytes {
		return "", domainerrors.InvalidInput(
			fmt.Sprintf("image is %d bytes; the limit is %d", len(f.Data), u.policy.MaxBytes),
			ReasonTooLarge,
		)
	}
	if len(f.Data) == 0 {
		return "", domainerrors.InvalidInput("image is empty", ReasonEmpty)
	}
	return contentType, nil
}

func (u *Uploader) allowed(contentType string) bool {
	return slices.Contains(u.policy.AllowedTypes, contentType)
}

func (u *Uploader) unsupported(contentType string) error {
	return domainerrors.InvalidInput(
		fmt.Sprintf("image type %s is not supported; use %s", contentType, strings.Join(u.policy.AllowedTypes, ", ")),
		ReasonUnsupportedType,
	)
}

// declaredType normalizes a declared content type. Missing and generic
// declarations come back empty.
func declaredType(raw string) string {
	declared := strings.TrimSpace(raw)
	if declared == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mediaType
	}
	declared = strings.ToLower(declared)
	if declared == "application/octet-stream" {
		return ""
	}
	return declared
}

// objectKey builds items/YYYY/MM/DD/<uuidv7><ext>.
func (u *Uploader) objectKey(contentType, name string) (string, error) {
	v7, err := u.newID()
	if err != nil {
		return "", err
	}
	ext, ok := extensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(name))
	}
	return u.now().UTC().Format("items/2006/01/02/") + v7.String() + ext, nil
}
