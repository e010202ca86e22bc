package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/dkeye/Drop/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultListLimit = 100

// Handlers serves monitoring and room file endpoints.
// Files may be nil, in which case every file endpoint answers 503.
type Handlers struct {
	Rooms         core.RoomDirectory
	Files         core.FileStore
	Codes         domain.CodeRange
	ListLimit     int
	MaxUploadSize int64
}

// ObjectServer is a FileStore that can also serve its own objects over HTTP,
// as the memory driver does under storage.MemoryRoute.
type ObjectServer interface {
	Get(roomCode, name string) ([]byte, string, bool)
	Put(roomCode, name string, data []byte, contentType string)
}

type PresignRequest struct {
	RoomID      string `json:"roomId" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type UploadResponse struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	Size     int64  `json:"size"`
}

func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/health", h.health)
	r.GET("/stats", h.stats)
	r.GET("/api/room/:code/status", h.roomStatus)

	r.POST("/api/files/presigned-url", h.requireFiles, h.presign)
	r.POST("/api/files/upload", h.requireFiles, h.upload)
	r.GET("/api/files/:roomId", h.requireFiles, h.list)
	r.GET("/api/files/:roomId/size", h.requireFiles, h.size)
	r.DELETE("/api/files/:roomId", h.requireFiles, h.deleteAll)
	r.DELETE("/api/files/:roomId/:fileName", h.requireFiles, h.deleteOne)

	if objects, ok := h.Files.(ObjectServer); ok {
		r.GET(storage.MemoryRoute+"/:roomId/:fileName", h.serveObject(objects))
		r.PUT(storage.MemoryRoute+"/:roomId/:fileName", h.putObject(objects))
	}
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"timestamp":  time.Now().UTC(),
		"totalRooms": h.Rooms.TotalRooms(),
		"totalUsers": h.Rooms.TotalMembers(),
	})
}

func (h *Handlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms":     h.Rooms.Stats(),
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handlers) roomStatus(c *gin.Context) {
	code, ok := h.parseCode(c, c.Param("code"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":    h.Rooms.RoomExists(code),
		"userCount": h.Rooms.MemberCount(code.Key()),
	})
}

func (h *Handlers) requireFiles(c *gin.Context) {
	if h.Files == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "file storage is not configured"})
		return
	}
	c.Next()
}

func (h *Handlers) presign(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId, fileName and contentType are required"})
		return
	}
	code, ok := h.parseLiveRoom(c, req.RoomID)
	if !ok {
		return
	}
	up, err := h.Files.PresignUpload(c.Request.Context(), code.String(), req.FileName, req.ContentType)
	if err != nil {
		h.storageError(c, err, "failed to generate upload url")
		return
	}
	c.JSON(http.StatusOK, up)
}

func (h *Handlers) upload(c *gin.Context) {
	if h.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)
	}
	if _, err := c.MultipartForm(); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	code, ok := h.parseLiveRoom(c, c.PostForm("roomId"))
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := h.Files.Upload(c.Request.Context(), code.String(), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		h.storageError(c, err, "failed to upload file")
		return
	}
	c.JSON(http.StatusOK, UploadResponse{FileName: info.Name, FileURL: info.URL, Size: info.Size})
}

func (h *Handlers) list(c *gin.Context) {
	code, ok := h.parseCode(c, c.Param("roomId"))
	if !ok {
		return
	}
	limit := h.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, limit)
	}
	page, err := h.Files.List(c.Request.Context(), code.String(), limit, c.Query("token"))
	if err != nil {
		h.storageError(c, err, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) size(c *gin.Context) {
	code, ok := h.parseCode(c, c.Param("roomId"))
	if !ok {
		return
	}
	total, err := h.Files.TotalSize(c.Request.Context(), code.String())
	if err != nil {
		h.storageError(c, err, "failed to get room size")
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalSize": total})
}

func (h *Handlers) deleteOne(c *gin.Context) {
	code, ok := h.parseCode(c, c.Param("roomId"))
	if !ok {
		return
	}
	name := c.Param("fileName")
	if !storage.ValidObjectName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	if err := h.Files.Delete(c.Request.Context(), code.String(), name); err != nil {
		h.storageError(c, err, "failed to delete file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) deleteAll(c *gin.Context) {
	code, ok := h.parseCode(c, c.Param("roomId"))
	if !ok {
		return
	}
	n, err := h.Files.DeleteAll(c.Request.Context(), code.String())
	if err != nil {
		h.storageError(c, err, "failed to delete files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

func (h *Handlers) parseCode(c *gin.Context, raw string) (domain.RoomCode, bool) {
	code, err := h.Codes.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room number"})
		return 0, false
	}
	return code, true
}

// parseLiveRoom is parseCode plus a 404 for rooms nobody can join.
func (h *Handlers) parseLiveRoom(c *gin.Context, raw string) (domain.RoomCode, bool) {
	code, ok := h.parseCode(c, raw)
	if !ok {
		return 0, false
	}
	if !h.Rooms.RoomExists(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return 0, false
	}
	return code, true
}

func (h *Handlers) storageError(c *gin.Context, err error, msg string) {
	log.Error().Err(err).Str("module", "transport.http").Str("path", c.FullPath()).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func (h *Handlers) serveObject(objects ObjectServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := h.parseCode(c, c.Param("roomId"))
		if !ok {
			return
		}
		data, contentType, ok := objects.Get(code.String(), c.Param("fileName"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// putObject accepts the PUT a client makes against a presigned upload URL.
func (h *Handlers) putObject(objects ObjectServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := h.parseLiveRoom(c, c.Param("roomId"))
		if !ok {
			return
		}
		name := c.Param("fileName")
		if !storage.ValidObjectName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
			return
		}
		body := io.Reader(c.Request.Body)
		if h.MaxUploadSize > 0 {
			body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
			return
		}
		contentType := c.Query("contentType")
		if contentType == "" {
			contentType = c.GetHeader("Content-Type")
		}
		objects.Put(code.String(), name, data, contentType)
		c.Status(http.StatusOK)
	}
}
