package domain

// Slot ключ слота доступности: услуга + метка времени начала
// Метка времени непрозрачна для движка: любое целое значение допустимо,
// привязки к сетке или к будущему нет
type Slot struct {
	ServiceID int64
	StartTime int64
}

// AvailabilitySlot запись в реестре доступности
// Отсутствие записи для ключа эквивалентно Available = false:
// слот должен быть явно открыт провайдером до бронирования
type AvailabilitySlot struct {
	ServiceID int64
	StartTime int64
	Available bool
}
