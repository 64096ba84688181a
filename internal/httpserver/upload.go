package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
)

const defaultMaxUploadBytes = 10 << 20

func (h *handlers) upload(c *gin.Context) {
	limit := h.maxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	// Leave headroom for the multipart envelope around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, domain.Invalid("file exceeds the upload limit", "file"))
			return
		}
		h.writeError(c, domain.Invalid("file is required", "file"))
		return
	}
	if fh.Size > limit {
		h.writeError(c, domain.Invalid("file exceeds the upload limit", "file"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if int64(len(data)) > limit {
		h.writeError(c, domain.Invalid("file exceeds the upload limit", "file"))
		return
	}

	res, err := h.deps.Uploader.Upload(c.Request.Context(), c.PostForm("folder"), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, res)
}
