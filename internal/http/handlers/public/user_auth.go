package public

import (
	"time"

	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"address":   user.Address,
		"phone":     user.Phone,
		"role":      user.Role,
	}
}

// Register 用户注册,成功后直接返回登录态。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "registration failed")
		return
	}

	response.Success(c, gin.H{
		"user":       userPayload(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// Login 用户登录。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "login failed")
		return
	}

	response.Success(c, gin.H{
		"user":       userPayload(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 返回当前登录用户资料。
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		respondError(c, response.CodeNotFound, "user not found", err)
		return
	}

	response.Success(c, userPayload(user))
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
}

// UpdateProfile 更新当前用户的收货资料。
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, err := h.UserAuthService.UpdateProfile(userID, service.UpdateProfileInput{
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		rules := []mappedHandlerError{
			{target: service.ErrProfileEmpty, code: response.CodeBadRequest, msg: "nothing to update"},
		}
		respondWithMappedError(c, err, rules, response.CodeInternal, "failed to update profile")
		return
	}

	response.Success(c, userPayload(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前用户密码。
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		rules := []mappedHandlerError{
			{target: service.ErrInvalidPassword, code: response.CodeBadRequest, msg: "old password is incorrect"},
			{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet requirements"},
		}
		respondWithMappedError(c, err, rules, response.CodeInternal, "failed to change password")
		return
	}

	response.SuccessWithMsg(c, "password updated", nil)
}
