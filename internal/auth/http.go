// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readanddownload/internal/platform/middleware"
	requestutil "github.com/taibuivan/readanddownload/internal/platform/request"
	"github.com/taibuivan/readanddownload/internal/platform/respond"
)

// Handler implements the logout endpoint.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// RegisterRoutes mounts POST /auth/logout for any authenticated caller.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Post("/auth/logout", handler.logout)
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims := middleware.GetUser(request.Context())

	if err := handler.authService.Logout(request.Context(), claims, requestutil.BearerToken(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
