package book_service

import "fmt"

// validateRequest валидирует входные данные запроса
//
// StartTime намеренно не проверяется: метка времени непрозрачна для
// движка, любое целое значение допустимо
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	return nil
}
