package create_booking

import (
	"context"

	bookService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/book_service"
)

type BookServiceUseCase interface {
	Execute(ctx context.Context, req *bookService.Request) (*bookService.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
