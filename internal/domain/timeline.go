package domain

import "time"

// TimelineEvent — одна запись хронологии регистрации заказа: что произошло
// (Type повторяет EventType доменного события) и когда. Reason заполняется
// только для отказов и истечений, в остальных записях пустой.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
