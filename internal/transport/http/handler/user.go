package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pankajkkc01/RAG-application/internal/app"
	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/transport/http/response"
)

type UserHandler struct {
	accessService *app.AccessService
}

func NewUserHandler(accessService *app.AccessService) *UserHandler {
	return &UserHandler{accessService: accessService}
}

type LoginRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

type AllowedUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// Login verifies the caller against the allow-list. Name and email match
// case-insensitively, the phone must match exactly after trimming.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	err := h.accessService.Login(c.Request.Context(), app.LoginInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotAllowed):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied: user not on the allowed list")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "name, email and phone are required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}
	response.OK(c, gin.H{"message": "Login successful"})
}

func (h *UserHandler) ListLogins(c *gin.Context) {
	logins, err := h.accessService.ListLogins()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list logins failed")
		return
	}
	response.OK(c, logins)
}

func (h *UserHandler) AddAllowedUsers(c *gin.Context) {
	var reqs []AllowedUserRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	users := make([]model.AllowedUser, 0, len(reqs))
	for _, r := range reqs {
		users = append(users, model.AllowedUser{
			Name:  r.Name,
			Email: r.Email,
			Phone: r.Phone,
		})
	}
	if err := h.accessService.AddAllowedUsers(users); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "every entry needs name, email and phone")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "add allowed users failed")
		}
		return
	}
	response.OK(c, gin.H{"message": "Allowed users added", "count": len(users)})
}

func (h *UserHandler) RemoveAllowedUser(c *gin.Context) {
	email := c.Param("email")
	if err := h.accessService.RemoveAllowedUser(email); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing email")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "remove allowed user failed")
		}
		return
	}
	response.OK(c, gin.H{"message": "Allowed user removed"})
}

func (h *UserHandler) ListAllowedUsers(c *gin.Context) {
	users, err := h.accessService.ListAllowedUsers()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list allowed users failed")
		return
	}
	response.OK(c, users)
}
