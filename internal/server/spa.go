package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Fallback handles every unmatched route. API paths get a JSON 404. When the
// environment serves the built front end, existing files under StaticDir are
// returned as-is and everything else gets index.html so client-side routing works.
func (h *Handlers) Fallback(c *gin.Context) {
	urlPath := c.Request.URL.Path
	if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") || !h.cfg.Environment.ServesSPA() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// Clean against a rooted path so ".." cannot climb out of StaticDir.
	rel := filepath.FromSlash(path.Clean("/" + urlPath))
	file := filepath.Join(h.cfg.StaticDir, rel)
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(h.cfg.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.File(index)
}
