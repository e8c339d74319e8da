package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"credkeeper/internal/server/auth"
	"credkeeper/internal/server/users"
	"credkeeper/internal/shared"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toTokensResponse(p *auth.TokenPair) tokensResponse {
	return tokensResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email and password are required")
		return
	}

	result, err := s.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    toUserResponse(result.User),
		"tokens":  toTokensResponse(result.Tokens),
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	pair, err := s.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"tokens":  toTokensResponse(pair),
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}

	pair, err := s.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrorInvalidToken) || errors.Is(err, shared.ErrorTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired refresh token"})
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": toTokensResponse(pair)})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email is required")
		return
	}

	if err := s.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset email sent"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password is required")
		return
	}

	err := s.service.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		// wrong and expired reset tokens are deliberately the same failure
		if errors.Is(err, shared.ErrorInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid or expired reset token"})
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.GetString(contextKeyUserID)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}

// writeError maps the service's typed failures onto HTTP status codes. The
// boundary never inspects error messages, only the sentinel classification.
func (s *Server) writeError(c *gin.Context, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, shared.ErrorValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, shared.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, shared.ErrorConflict):
		status, msg = http.StatusConflict, "email already registered"
	case errors.Is(err, shared.ErrorNotFound):
		status, msg = http.StatusNotFound, "no user with that email"
	case errors.Is(err, shared.ErrorTokenExpired), errors.Is(err, shared.ErrorInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, shared.ErrorTransient):
		status, msg = http.StatusServiceUnavailable, "temporarily unavailable, please retry"
	default:
		status, msg = http.StatusInternalServerError, "internal server error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
	}

	c.JSON(status, gin.H{"success": false, "message": msg})
}
