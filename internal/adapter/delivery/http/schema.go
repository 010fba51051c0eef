package http

import (
	"time"

	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

type urlRequest struct {
	URL string `json:"url" validate:"required,http_url,max=2048"`
}

type urlResponse struct {
	ID        int64     `json:"id"`
	ShortCode string    `json:"short_code"`
	ShortURL  string    `json:"short_url"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toURLResponse(baseURL string, url *entity.URL) urlResponse {
	return urlResponse{
		ID:        url.ID,
		ShortCode: url.ShortCode,
		ShortURL:  baseURL + "/" + url.ShortCode,
		URL:       url.OriginalURL,
		CreatedAt: url.CreatedAt,
		UpdatedAt: url.UpdatedAt,
	}
}
