package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const DefaultFolder = "products"

var folders = map[string]bool{"products": true, "categories": true}

// Uploaded describes a stored image.
type Uploaded struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

type Uploader struct {
	proc    Processor
	storage Storage
	logger  *zap.Logger
}

func NewUploader(proc Processor, storage Storage, log *zap.Logger) *Uploader {
	return &Uploader{proc: proc, storage: storage, logger: logger.OrNop(log)}
}

// Upload processes data and stores it as <folder>/<uuid>.jpg.
func (u *Uploader) Upload(ctx context.Context, folder string, data []byte) (*Uploaded, error) {
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = DefaultFolder
	}
	if !folders[folder] {
		return nil, domain.Invalid("folder must be products or categories", "folder")
	}
	if len(data) == 0 {
		return nil, domain.Invalid("file is required", "file")
	}

	img, err := u.proc.Process(data)
	if err != nil {
		return nil, err
	}

	objectPath := folder + "/" + uuid.NewString() + ".jpg"
	url, err := u.storage.Upload(ctx, objectPath, img.Data, "image/jpeg")
	if err != nil {
		u.logger.Error("media: store upload", zap.String("path", objectPath), zap.Error(err))
		return nil, err
	}
	u.logger.Info("media: stored image",
		zap.String("path", objectPath),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("bytes", len(img.Data)),
	)
	return &Uploaded{URL: url, Path: objectPath, Width: img.Width, Height: img.Height, Size: len(img.Data)}, nil
}
