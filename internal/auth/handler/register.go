package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ksrami99/video-tube/internal/auth"
	"github.com/ksrami99/video-tube/internal/httpx"
	"github.com/ksrami99/video-tube/internal/media"
)

// Register accepts a multipart form: the four account fields plus an
// "avatar" file and an optional "coverImage" file. Clients that uploaded
// ahead of time may send avatarRef/coverRef instead of file parts.
func (h *Handler) Register(c *gin.Context) {
	in := auth.RegisterInput{
		FullName:  c.PostForm("fullname"),
		Email:     c.PostForm("email"),
		Username:  c.PostForm("username"),
		Password:  c.PostForm("password"),
		AvatarRef: c.PostForm("avatarRef"),
		CoverRef:  c.PostForm("coverRef"),
	}

	ref, err := h.stashUpload(c, "avatar", "avatars")
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if ref != "" {
		in.AvatarRef = ref
	}

	ref, err = h.stashUpload(c, "coverImage", "covers")
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if ref != "" {
		in.CoverRef = ref
	}

	created, err := h.sessions.Register(c.Request.Context(), in)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusCreated, created, "user registered successfully")
}

// stashUpload pushes an attached file to the media store and records it in
// the upload registry, returning the reference. Absent file parts return
// an empty reference, not an error.
func (h *Handler) stashUpload(c *gin.Context, field, prefix string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", httpx.Wrap(httpx.KindInternal, "file upload failed", err)
	}
	defer f.Close()

	asset, err := h.store.Put(
		c.Request.Context(),
		media.StorageKey(prefix),
		fh.Header.Get("Content-Type"),
		f,
	)
	if err != nil {
		return "", httpx.Wrap(httpx.KindInternal, "file upload failed", err)
	}

	ref := uuid.NewString()
	if err := h.uploads.Record(c.Request.Context(), ref, *asset, h.cfg.UploadTTL); err != nil {
		return "", httpx.Wrap(httpx.KindInternal, "file upload failed", err)
	}

	return ref, nil
}
