package entity

import "fmt"

// OrderStatus is stored and serialized as a small integer.
type OrderStatus int

const (
	StatusPending   OrderStatus = 0
	StatusDelivered OrderStatus = 1
)

var statusNames = map[OrderStatus]string{
	StatusPending:   "Pending",
	StatusDelivered: "Delivered",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s OrderStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}
