package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/sessionstore"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	persistence *sessionstore.SQLiteStore
	version     string
}

func NewHealthController(persistence *sessionstore.SQLiteStore, version string) *HealthController {
	return &HealthController{
		persistence: persistence,
		version:     version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.persistence != nil {
		if err := h.persistence.Ping(); err != nil {
			checks["session_store"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["session_store"] = "ok"
		}
	} else {
		checks["session_store"] = "in-memory"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
