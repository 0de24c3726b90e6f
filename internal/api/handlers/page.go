package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ErrInvalidPage возвращается при некорректных параметрах пагинации
var ErrInvalidPage = errors.New("handlers: invalid pagination parameters")

// ParsePage извлекает offset и limit из query параметров запроса
// offset < 0 и limit <= 0 отклоняются; limit сверху ограничен maxPageLimit
func ParsePage(r *http.Request) (domain.Page, error) {
	page := domain.Page{Offset: 0, Limit: defaultPageLimit}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || offset < 0 {
			return domain.Page{}, ErrInvalidPage
		}
		page.Offset = offset
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			return domain.Page{}, ErrInvalidPage
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		page.Limit = limit
	}

	return page, nil
}
