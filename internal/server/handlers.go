package server

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/diskspace"
	"github.com/filedrop/filedrop/internal/format"
	"github.com/filedrop/filedrop/internal/storage"
	"github.com/filedrop/filedrop/internal/version"
)

// multipartSlack allows for boundaries and part headers around the file.
const multipartSlack = 64 << 10

func (s *Server) upload(c *gin.Context) {
	limit := s.cfg.Upload.MaxSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)

	hdr, err := c.FormFile(constants.UploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.tooLarge(c, limit)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	if hdr.Size > limit {
		s.tooLarge(c, limit)
		return
	}

	name, err := storage.CleanName(hdr.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}

	f, err := hdr.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	if err := s.store.Put(c.Request.Context(), name, f, hdr.Size); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
			return
		}
		_ = c.Error(err)
		if diskspace.IsInsufficientSpace(err) {
			c.JSON(http.StatusInsufficientStorage, gin.H{"error": "not enough storage space"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	s.logger.Info().Str("name", name).Str("size", format.Bytes(hdr.Size)).Msg("file stored")
	c.JSON(http.StatusOK, gin.H{"name": name, "size": hdr.Size})
}

func (s *Server) tooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": "file too large (max " + format.Size(limit) + ")",
	})
}

func (s *Server) list(c *gin.Context) {
	files, err := s.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list files"})
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("name")
	rc, size, err := s.store.Open(c.Request.Context(), name)
	if err != nil {
		s.storeError(c, err, "could not read file")
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (s *Server) delete(c *gin.Context) {
	name := c.Param("name")
	if err := s.store.Delete(c.Request.Context(), name); err != nil {
		s.storeError(c, err, "could not delete file")
		return
	}
	s.logger.Info().Str("name", name).Msg("file deleted")
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

// storeError maps unknown and unstorable names to 404.
func (s *Server) storeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		c.JSON(http.StatusNotFound, gin.H{"error": storage.ErrNotFound.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
