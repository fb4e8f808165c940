// internal/workers/trip/hold-cab/models.go
package holdcab

type Input struct {
	SearchID      string `json:"searchId"`
	CabID         string `json:"cabId"`
	Category      string `json:"category"`
	PassengerName string `json:"passengerName"`
	Gender        string `json:"gender"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
}

type Output struct {
	HoldStatus      string  `json:"holdStatus"`
	BookingID       string  `json:"bookingId"`
	PaymentURL      string  `json:"paymentUrl"`
	Fare            float64 `json:"fare"`
	Currency        string  `json:"currency"`
	PassengerMobile string  `json:"passengerMobile"`
	PassengerEmail  string  `json:"passengerEmail"`
}

const StatusHeld = "held"
