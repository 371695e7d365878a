package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/storage"
)

const maxPhotoBytes = 10 << 20

type PhotoHandler struct {
	store *storage.PhotoStore
}

func NewPhotoHandler(store *storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// POST /photos takes a multipart upload in field "photo" and returns the URL the
// completion payload should carry.
func (h *PhotoHandler) Upload(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required", "code": "photo_required"})
		return
	}
	if header.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large", "code": "photo_too_large"})
		return
	}

	src, err := header.Open()
	if err != nil {
		writeError(c, "photo", "upload", err)
		return
	}
	defer src.Close()

	url, err := h.store.Save(src, header.Filename)
	if err != nil {
		writeError(c, "photo", "upload", err)
		return
	}
	log.Printf("[photo][upload][ok] by=%d url=%s size=%d", actor.ID, url, header.Size)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
