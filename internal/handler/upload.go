package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/media"
)

// stageFile saves the multipart file in field to the temp dir. An absent
// field yields an empty path and no error. The caller owns the returned
// path and removes it when done.
func stageFile(c *gin.Context, dir media.TempDir, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", apperror.Validation("invalid upload", field+": "+err.Error())
	}

	path, err := dir.NewPath(header.Filename)
	if err != nil {
		return "", apperror.Internal("failed to stage upload", err)
	}
	if err := c.SaveUploadedFile(header, path); err != nil {
		media.Remove(path)
		return "", apperror.Internal("failed to stage upload", err)
	}
	return path, nil
}

// stageFiles stages several fields, removing everything already staged if
// one of them fails.
func stageFiles(c *gin.Context, dir media.TempDir, fields ...string) ([]string, error) {
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		path, err := stageFile(c, dir, field)
		if err != nil {
			removeAll(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		media.Remove(p)
	}
}
