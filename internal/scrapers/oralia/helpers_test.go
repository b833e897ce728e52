package oralia

import (
	"time"

	"oralia-konnector/internal/chrono"
	"oralia-konnector/internal/telemetry"

	"golang.org/x/time/rate"
)

var testImportDate = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(baseUrl string, tel telemetry.API) *Client {
	return NewClient(ClientOptions{
		BaseUrl:           baseUrl,
		RequestsPerSecond: rate.Inf,
		Time:              chrono.FixedTime(testImportDate),
	}, tel)
}
