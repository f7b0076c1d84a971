package devserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openpress/quill/internal/api"
	"github.com/openpress/quill/internal/token"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	Refresh string `json:"refresh"`
}

// fieldErrors writes a DRF-shaped validation error body
func fieldErrors(c *gin.Context, status int, errs map[string][]string) {
	c.JSON(status, errs)
}

func (s *Server) handleRegister(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	errs := map[string][]string{}
	if body.Username == "" {
		errs["username"] = append(errs["username"], "This field is required.")
	}
	if body.Email == "" {
		errs["email"] = append(errs["email"], "This field is required.")
	} else if !strings.Contains(body.Email, "@") {
		errs["email"] = append(errs["email"], "Enter a valid email address.")
	}
	if body.Password == "" {
		errs["password"] = append(errs["password"], "This field is required.")
	} else if len(body.Password) < 8 {
		errs["password"] = append(errs["password"], "This password is too short. It must contain at least 8 characters.")
	}
	if len(errs) > 0 {
		fieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	digest, err := HashPassword(body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	acct := &Account{
		Username:       body.Username,
		Email:          strings.ToLower(strings.TrimSpace(body.Email)),
		PasswordDigest: digest,
		UserType:       "regular",
	}
	switch err := s.accounts.Create(c.Request.Context(), acct); err {
	case nil:
	case ErrUsernameTaken:
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"username": {"A user with that username already exists."},
		})
		return
	case ErrEmailTaken:
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"email": {"A user with this email already exists."},
		})
		return
	default:
		s.logger.Error("failed to create account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	s.issueSession(c, acct, http.StatusCreated)
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	if body.Username == "" && body.Email == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Either username or email must be provided"},
		})
		return
	}
	if body.Password == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"password": {"Password is required"},
		})
		return
	}

	key := body.Email
	if key == "" {
		key = body.Username
	}
	if !s.limiter.Allow(key) {
		fieldErrors(c, http.StatusTooManyRequests, map[string][]string{
			"non_field_errors": {"Too many failed login attempts, try again later"},
		})
		return
	}

	acct, err := s.findLoginAccount(c, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if acct == nil || VerifyPassword(body.Password, acct.PasswordDigest) != nil {
		s.limiter.RecordFailure(key)
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid credentials"},
		})
		return
	}

	s.limiter.RecordSuccess(key)
	s.issueSession(c, acct, http.StatusOK)
}

func (s *Server) findLoginAccount(c *gin.Context, body loginBody) (*Account, error) {
	if body.Email != "" {
		return s.accounts.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(body.Email)))
	}
	return s.accounts.FindByUsername(c.Request.Context(), body.Username)
}

// issueSession mints a token pair and writes the auth response
func (s *Server) issueSession(c *gin.Context, acct *Account, status int) {
	pair, err := s.signer.Generate(acct.ID, acct.Username, acct.Email)
	if err != nil {
		s.logger.Error("failed to sign tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(status, api.AuthResponse{
		Token:   pair.AccessToken,
		Refresh: pair.RefreshToken,
		User: &api.User{
			ID:       acct.ID,
			Username: acct.Username,
			Email:    acct.Email,
			UserType: acct.UserType,
		},
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var body refreshBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Refresh == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"refresh": {"This field is required."},
		})
		return
	}

	claims, err := s.signer.Verify(body.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			s.logger.Warn("denylist check failed", zap.Error(err))
		} else if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{
				"detail": "Token is blacklisted",
				"code":   "token_not_valid",
			})
			return
		}
	}

	access, err := s.signer.Access(claims.SubjectID(), claims.Username, claims.Email)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Revoke the refresh token when the client supplies it and a
	// denylist is configured; logout succeeds regardless.
	var body refreshBody
	if err := c.ShouldBindJSON(&body); err == nil && body.Refresh != "" && s.denylist != nil {
		if claims, err := s.signer.Verify(body.Refresh); err == nil {
			if err := s.denylist.Add(c.Request.Context(), claims.ID, claims.ExpiresAtTime()); err != nil {
				s.logger.Warn("failed to revoke refresh token", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out"})
}

func (s *Server) handleUpdateOwnProfile(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	if v, ok := fields["username"].(string); ok && v != "" {
		acct.Username = v
	}
	if v, ok := fields["email"].(string); ok && v != "" {
		acct.Email = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := fields["bio"].(string); ok {
		acct.Bio = v
	}

	if err := s.accounts.Update(c.Request.Context(), acct); err != nil {
		s.logger.Error("failed to update account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        acct.ID,
		"username":  acct.Username,
		"email":     acct.Email,
		"user_type": acct.UserType,
		"bio":       acct.Bio,
	})
}

// currentAccount loads the account for the authenticated claims,
// writing the error response itself when that fails.
func (s *Server) currentAccount(c *gin.Context) *Account {
	claimsVal, ok := c.Get("claims")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return nil
	}
	claims := claimsVal.(*token.Claims)

	acct, err := s.accounts.FindByID(c.Request.Context(), claims.SubjectID())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil
	}
	if acct == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return nil
	}
	return acct
}
