// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readanddownload/internal/platform/middleware"
	requestutil "github.com/taibuivan/readanddownload/internal/platform/request"
	"github.com/taibuivan/readanddownload/internal/platform/respond"
	"github.com/taibuivan/readanddownload/internal/platform/sec"
)

// CountResponse is the body of the per-book count endpoint.
type CountResponse struct {
	Count int64 `json:"count"`
}

// UserCountResponse is the body of the per-user count endpoint.
type UserCountResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the kind under /{kind.Name}. The router must already
// run [middleware.Authenticate].
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/"+handler.service.Kind().Name, func(kindRoute chi.Router) {

		// Any known caller
		kindRoute.Group(func(memberRoute chi.Router) {
			memberRoute.Use(middleware.RequireRole(sec.RoleUser, sec.RoleAdmin))

			memberRoute.Post("/", handler.create)
			memberRoute.Get("/count/{isbn}", handler.countByISBN)
			memberRoute.Get("/user/count", handler.countByUser)
			memberRoute.Get("/{id}", handler.get)
		})

		// Admin only
		kindRoute.Group(func(adminRoute chi.Router) {
			adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

			adminRoute.Get("/", handler.list)
			adminRoute.Put("/{id}", handler.update)
			adminRoute.Patch("/{id}", handler.update)
			adminRoute.Delete("/{id}", handler.delete)
		})
	})
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	records, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string][]View{handler.service.Kind().Name: ToViews(records)})
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ToView(record))
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, ToView(record))
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ToView(record))
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, handler.service.Kind().Messages.Deleted)
}

func (handler *Handler) countByISBN(writer http.ResponseWriter, request *http.Request) {
	count, err := handler.service.CountByISBN(request.Context(),
		requestutil.Param(request, "isbn"),
		requestutil.BearerToken(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, CountResponse{Count: count})
}

func (handler *Handler) countByUser(writer http.ResponseWriter, request *http.Request) {
	count, message, err := handler.service.CountByUser(request.Context(),
		requestutil.Query(request, "userId"),
		requestutil.BearerToken(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, UserCountResponse{Message: message, Count: count})
}
