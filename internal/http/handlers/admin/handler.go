package admin

import (
	"github.com/sneakerhead-api/internal/provider"
)

// Handler 管理端接口处理器
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
