package devserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openpress/quill/internal/api"
)

var validUserTypes = map[string]bool{"regular": true, "author": true, "admin": true}

func profileJSON(acct *Account) api.Profile {
	return api.Profile{
		ID: acct.ID,
		User: &api.User{
			ID:       acct.ID,
			Username: acct.Username,
			Email:    acct.Email,
		},
		UserType:  acct.UserType,
		Bio:       acct.Bio,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

// Profiles

func (s *Server) handleListProfiles(c *gin.Context) {
	accounts, err := s.accounts.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	out := make([]api.Profile, 0, len(accounts))
	for i := range accounts {
		out = append(out, profileJSON(&accounts[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	acct, err := s.accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, profileJSON(acct))
}

func (s *Server) handlePatchProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	acct, err := s.accounts.FindByID(c.Request.Context(), id)
	if err != nil || acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	if v, ok := fields["user_type"].(string); ok {
		if !validUserTypes[v] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_type"})
			return
		}
		acct.UserType = v
	}
	if v, ok := fields["bio"].(string); ok {
		acct.Bio = v
	}

	if err := s.accounts.Update(c.Request.Context(), acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, profileJSON(acct))
}

func (s *Server) handleChangeUserType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body struct {
		UserType string `json:"user_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_type is required"})
		return
	}
	if !validUserTypes[body.UserType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_type"})
		return
	}

	acct, err := s.accounts.FindByID(c.Request.Context(), id)
	if err != nil || acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	acct.UserType = body.UserType
	if err := s.accounts.Update(c.Request.Context(), acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, profileJSON(acct))
}

// Articles

func (s *Server) handleListArticles(c *gin.Context) {
	c.JSON(http.StatusOK, s.content.ListArticles())
}

func (s *Server) handleGetArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	art, err := s.content.GetArticle(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, art)
}

func (s *Server) handleCreateArticle(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}

	var in api.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	errs := map[string][]string{}
	if in.Title == "" {
		errs["title"] = append(errs["title"], "This field is required.")
	}
	if in.Content == "" {
		errs["content"] = append(errs["content"], "This field is required.")
	}
	if in.Category == 0 {
		errs["category"] = append(errs["category"], "This field is required.")
	}
	if len(errs) > 0 {
		fieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	author := api.User{ID: acct.ID, Username: acct.Username}
	art, err := s.content.CreateArticle(in, author)
	if err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"category": {"Invalid pk - object does not exist."},
		})
		return
	}
	c.JSON(http.StatusCreated, art)
}

func (s *Server) handleUpdateArticle(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	art, err := s.content.GetArticle(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if !s.canEdit(acct, art.Author) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	var in api.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}

	updated, err := s.content.UpdateArticle(id, in)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteArticle(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	art, err := s.content.GetArticle(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if !s.canEdit(acct, art.Author) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	_ = s.content.DeleteArticle(id)
	c.Status(http.StatusNoContent)
}

// canEdit mirrors the server's owner-or-admin object permission
func (s *Server) canEdit(acct *Account, owner *api.User) bool {
	if acct.UserType == "admin" {
		return true
	}
	return owner != nil && owner.ID == acct.ID
}

// Categories

func (s *Server) handleListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.content.ListCategories())
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var in api.Category
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"name": {"This field is required."},
		})
		return
	}
	c.JSON(http.StatusCreated, s.content.CreateCategory(in))
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.content.DeleteCategory(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.Status(http.StatusNoContent)
}

// Tags

func (s *Server) handleListTags(c *gin.Context) {
	c.JSON(http.StatusOK, s.content.ListTags())
}

func (s *Server) handleCreateTag(c *gin.Context) {
	var in api.Tag
	if err := c.ShouldBindJSON(&in); err != nil || in.TagName == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"tag_name": {"This field is required."},
		})
		return
	}
	c.JSON(http.StatusCreated, s.content.CreateTag(in))
}

func (s *Server) handleDeleteTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.content.DeleteTag(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.Status(http.StatusNoContent)
}

// Comments

func (s *Server) handleListComments(c *gin.Context) {
	c.JSON(http.StatusOK, s.content.ListComments())
}

func (s *Server) handleCreateComment(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}

	var in api.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid request body"},
		})
		return
	}
	if in.Content == "" {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"content": {"This field is required."},
		})
		return
	}

	comment, err := s.content.CreateComment(in, api.User{ID: acct.ID, Username: acct.Username})
	if err != nil {
		fieldErrors(c, http.StatusBadRequest, map[string][]string{
			"article": {"Invalid pk - object does not exist."},
		})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	acct := s.currentAccount(c)
	if acct == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	comment, err := s.content.GetComment(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if !s.canEdit(acct, comment.User) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	_ = s.content.DeleteComment(id)
	c.Status(http.StatusNoContent)
}
