package handlers

import (
	"net/http"

	intconfig "cabbooking/internal/config"
	"cabbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// DBCheck pings the database.
func (h *Handlers) DBCheck(c *gin.Context) {
	if err := intconfig.EnsureDB(c.Request.Context(), h.DB); err != nil {
		respondError(c, http.StatusServiceUnavailable, domain.KindUnknown, "db_unavailable", "database is not reachable", nil)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"database": "ok"})
}

// NoRoute answers unknown paths with the error envelope.
func NoRoute(c *gin.Context) {
	respondError(c, http.StatusNotFound, domain.KindNotFound, "route_not_found", "no route for "+c.Request.Method+" "+c.Request.URL.Path, nil)
}

// NoMethod answers a known path hit with the wrong verb.
func NoMethod(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, domain.KindValidation, "method_not_allowed", c.Request.Method+" is not allowed on "+c.Request.URL.Path, nil)
}
