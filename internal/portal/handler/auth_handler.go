package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// AuthHandler exposes login, token refresh and account management.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates an account. The first registration on an empty
// instance needs no auth; afterwards the route sits behind admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.Register(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, user)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	user, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "tokens": tokens})
}

// Refresh rotates a refresh token into a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, tokens)
}

// RequestAccount files a signup for admin review.
func (h *AuthHandler) RequestAccount(c *gin.Context) {
	var req service.AccountRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	pending, err := h.svc.RequestAccount(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, pending)
}

// ListRequests returns pending signups; admin only via routing.
func (h *AuthHandler) ListRequests(c *gin.Context) {
	pending, err := h.svc.ListRequests(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, pending)
}

// ApproveRequest turns a pending signup into an account.
func (h *AuthHandler) ApproveRequest(c *gin.Context) {
	requestID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.ApproveRequest(c.Request.Context(), requestID, req.Role)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, user)
}

// RejectRequest discards a pending signup.
func (h *AuthHandler) RejectRequest(c *gin.Context) {
	requestID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RejectRequest(c.Request.Context(), requestID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, user)
}

// UpdateMe edits the caller's own profile.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req service.SelfUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.UpdateMe(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, user)
}

// ListUsers returns accounts matching an optional search.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, users)
}

// UpdateUser edits any account; admin only via routing.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.AdminUserUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), userID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, user)
}

// DeleteUser removes an account and unlinks its records.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), GetUserID(c), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
