package config

import "time"

type Worker struct {
	StockCheckInterval time.Duration `env:"WORKER_STOCK_CHECK_INTERVAL" envDefault:"5m"`
	LowStockThreshold  int           `env:"WORKER_LOW_STOCK_THRESHOLD" envDefault:"10"`
}
