package domain

// Page параметры страничного чтения индексов
// Окно [Offset, Offset+Limit) вырезается из списка в порядке вставки;
// Offset за концом списка даёт пустую страницу, а не ошибку
type Page struct {
	Offset int64
	Limit  int64
}

// Window вырезает страницу из списка идентификаторов в порядке вставки
// Возвращает общее количество элементов и окно [Offset, Offset+Limit)
func (p Page) Window(ids []int64) (int64, []int64) {
	total := int64(len(ids))

	if p.Offset >= total || p.Limit <= 0 {
		return total, []int64{}
	}

	end := p.Offset + p.Limit
	if end > total {
		end = total
	}

	window := make([]int64, end-p.Offset)
	copy(window, ids[p.Offset:end])
	return total, window
}
