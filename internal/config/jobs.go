package config

import "time"

type Jobs struct {
	BatchSize   uint32        `env:"JOBS_BATCH_SIZE" envDefault:"50"`
	Interval    time.Duration `env:"JOBS_INTERVAL" envDefault:"5s"`
	MaxAttempts int32         `env:"JOBS_MAX_ATTEMPTS" envDefault:"5"`
}
