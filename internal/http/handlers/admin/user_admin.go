package admin

import (
	"strconv"
	"strings"

	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/gin-gonic/gin"
)

type adminUserView struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func newAdminUserView(user *models.User) adminUserView {
	return adminUserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListUsers 管理端用户列表,密码散列不出网
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Role:     strings.TrimSpace(c.Query("role")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list users", err)
		return
	}

	views := make([]adminUserView, 0, len(users))
	for i := range users {
		views = append(views, newAdminUserView(&users[i]))
	}

	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}
