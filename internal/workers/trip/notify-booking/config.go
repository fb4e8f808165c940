// internal/workers/trip/notify-booking/config.go
package notifybooking

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SenderID     string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		FromEmail:    "bookings@example.com",
		SMSEnabled:   true,
	}
}
