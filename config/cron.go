package config

import (
	"os"
)

// OrderExpirationSchedule reads the sweep interval from env, 15m default.
func OrderExpirationSchedule() string {
	if s := os.Getenv("ORDER_EXPIRATION_INTERVAL"); s != "" {
		return "@every " + s
	}
	return "@every 15m"
}
