package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "littlelemon_orders_placed_total",
		Help: "Orders created from carts",
	})
	orderLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "littlelemon_order_lines",
		Help:    "Number of lines per placed order",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
	orderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "littlelemon_order_status_changes_total",
		Help: "Order status changes by actor role and target status",
	}, []string{"role", "status"})
)
