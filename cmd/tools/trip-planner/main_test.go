package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cabs-workers/internal/booking"
)

func TestSearchSummary(t *testing.T) {
	got := searchSummary(&booking.SearchResult{
		SearchID:         "srch-1",
		TotalDistanceKm:  38.4,
		TotalDurationMin: 55,
	})
	assert.Equal(t, "Search srch-1: 38.4 km, about 55 min", got)
}

func TestCabLine(t *testing.T) {
	got := cabLine(2, booking.Cab{
		CabID:    "cab-2",
		Category: "suv",
		Model:    "Ertiga",
		Fare:     1350,
		Currency: "INR",
		Seats:    6,
	})
	assert.Equal(t, "2. suv Ertiga, 6 seats, 1350 INR (cab cab-2)", got)
}
