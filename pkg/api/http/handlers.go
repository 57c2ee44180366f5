package http

import (
	"net/http"
	"time"

	"github.com/aescanero/helloapi/internal/application/values"
	"github.com/aescanero/helloapi/pkg/api/openapi"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes
const (
	CodeInvalidID        = "INVALID_ID"
	CodeInvalidBody      = "INVALID_BODY"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{"api": "ok"},
	}

	if s.health != nil {
		status := s.health.GetStatus()
		for name, result := range status.Checks {
			resp.Checks[name] = result
		}
		resp.Errors = status.Errors
		if !status.Healthy {
			resp.Status = "degraded"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// handleListValues handles GET /api/values
func (s *Server) handleListValues(c *gin.Context) {
	c.JSON(http.StatusOK, s.values.List(c.Request.Context()))
}

// handleGetValue handles GET /api/values/:id
func (s *Server) handleGetValue(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.values.Get(c.Request.Context(), id))
}

// handleCreateValue handles POST /api/values
func (s *Server) handleCreateValue(c *gin.Context) {
	value, ok := s.bindValue(c)
	if !ok {
		return
	}

	s.values.Create(c.Request.Context(), value)
	c.Status(http.StatusOK)
}

// handleUpdateValue handles PUT /api/values/:id
func (s *Server) handleUpdateValue(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}
	value, ok := s.bindValue(c)
	if !ok {
		return
	}

	s.values.Update(c.Request.Context(), id, value)
	c.Status(http.StatusOK)
}

// handleDeleteValue handles DELETE /api/values/:id
func (s *Server) handleDeleteValue(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}

	s.values.Delete(c.Request.Context(), id)
	c.Status(http.StatusOK)
}

// bindID extracts the id path parameter, answering 400 when it is not an integer
func (s *Server) bindID(c *gin.Context) (int64, bool) {
	id, err := values.ParseID(c.Param("id"))
	if err != nil {
		s.logger.Debug("invalid id", zap.String("id", c.Param("id")), zap.Error(err))
		abortWithError(c, http.StatusBadRequest, CodeInvalidID, err.Error())
		return 0, false
	}
	return id, true
}

// bindValue decodes a JSON string body, answering 400 when it is missing or not a string.
// A JSON null decodes as the empty string.
func (s *Server) bindValue(c *gin.Context) (string, bool) {
	var value string
	if err := c.ShouldBindJSON(&value); err != nil {
		s.logger.Debug("invalid request body", zap.Error(err))
		abortWithError(c, http.StatusBadRequest, CodeInvalidBody, "request body must be a JSON string: "+err.Error())
		return "", false
	}
	return value, true
}

// handleSwaggerUI serves the browsable API page
func (s *Server) handleSwaggerUI(c *gin.Context) {
	c.HTML(http.StatusOK, openapi.UITemplateName, s.docs.UIData())
}

// handleSwaggerDocument serves the Swagger 2.0 discovery document
func (s *Server) handleSwaggerDocument(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", s.docs.SwaggerJSON())
}

// handleOpenAPIDocument serves the OpenAPI 3 discovery document
func (s *Server) handleOpenAPIDocument(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", s.docs.OpenAPIJSON())
}

func (s *Server) handleNoRoute(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, CodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}

func (s *Server) handleNoMethod(c *gin.Context) {
	abortWithError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method "+c.Request.Method+" is not allowed on "+c.Request.URL.Path)
}
