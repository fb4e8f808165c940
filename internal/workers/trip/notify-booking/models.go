// internal/workers/trip/notify-booking/models.go
package notifybooking

type Input struct {
	BookingID          string `json:"bookingId"`
	PaymentURL         string `json:"paymentUrl"`
	PassengerName      string `json:"passengerName"`
	PassengerEmail     string `json:"passengerEmail"`
	PassengerMobile    string `json:"passengerMobile"`
	SourceAddress      string `json:"sourceAddress"`
	DestinationAddress string `json:"destinationAddress"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"notificationStatus"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"`
}

const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
