package domain

// SeatQuantity — пара (тип места, количество). Используется и в леджере
// доступности, и в позициях заказа, и в сообщениях резервирования.
type SeatQuantity struct {
	SeatTypeID string `json:"seat_type_id"`
	Quantity   int32  `json:"quantity"`
}

// FindSeatQuantity возвращает количество для типа места и признак его наличия.
func FindSeatQuantity(seats []SeatQuantity, seatTypeID string) (int32, bool) {
	for _, s := range seats {
		if s.SeatTypeID == seatTypeID {
			return s.Quantity, true
		}
	}
	return 0, false
}

// UpsertSeatQuantity возвращает копию списка, где количество для типа места
// заменено (или добавлено, если типа ещё не было).
func UpsertSeatQuantity(seats []SeatQuantity, seatTypeID string, quantity int32) []SeatQuantity {
	result := make([]SeatQuantity, 0, len(seats)+1)
	found := false
	for _, s := range seats {
		if s.SeatTypeID == seatTypeID {
			s.Quantity = quantity
			found = true
		}
		result = append(result, s)
	}
	if !found {
		result = append(result, SeatQuantity{SeatTypeID: seatTypeID, Quantity: quantity})
	}
	return result
}

// ReserveSeats вычисляет новое разбиение (reserved, available) для одного типа
// места. requested — итоговое желаемое количество, oldReserved — сколько то же
// самое резервирование уже удерживает: повторная доставка команды считает
// дельту от текущего удержания, а не резервирует повторно.
//
// Если запрошено больше, чем доступно вместе с текущим удержанием, резерв
// ограничивается этой суммой — это частичный результат.
func ReserveSeats(available, requested, oldReserved int32) (newReserved, newAvailable int32) {
	newReserved = requested
	if ceiling := available + oldReserved; newReserved > ceiling {
		newReserved = ceiling
	}

	delta := newReserved - oldReserved
	newAvailable = available - delta
	if newAvailable < 0 {
		newAvailable = 0
	}
	return newReserved, newAvailable
}
