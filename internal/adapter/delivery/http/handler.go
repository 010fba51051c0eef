package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
	"github.com/vadimbarashkov/base62-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.RequestTooLargeResponse)
			return
		}

		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.SuccessResponse("URL shortened.", toURLResponse(h.baseURL, url)))
}

func (h *urlHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.SuccessResponse("URL resolved.", toURLResponse(h.baseURL, url)))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusMovedPermanently)
}

func (h *urlHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidShortCodeResponse)
	case errors.Is(err, entity.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.URLNotFoundResponse)
	case errors.Is(err, entity.ErrRegistryUnavailable):
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.UnavailableResponse)
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}
