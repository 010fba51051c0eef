package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

type urlRepository interface {
	GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error)
	GetByID(ctx context.Context, id int64) (*entity.URL, error)
}

type codec interface {
	Encode(id int64) (string, error)
	Decode(code string) (int64, error)
}

type URLUseCase struct {
	urlRepo urlRepository
	codec   codec
}

func New(urlRepo urlRepository, codec codec) *URLUseCase {
	return &URLUseCase{
		urlRepo: urlRepo,
		codec:   codec,
	}
}

// ShortenURL registers originalURL, or finds its existing registration, and
// returns the record with its short code filled in. Repeated calls with the
// same URL yield the same code.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	url, err := uc.urlRepo.GetOrCreate(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to register url: %w", op, err)
	}

	shortCode, err := uc.codec.Encode(url.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode id: %w", op, err)
	}

	url.ShortCode = shortCode

	return url, nil
}

// ResolveShortCode decodes shortCode and looks up the registered URL. Codes
// that fail to decode never reach the registry.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	id, err := uc.codec.Decode(shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode short code: %w", op, err)
	}

	url, err := uc.urlRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	url.ShortCode = shortCode

	return url, nil
}
