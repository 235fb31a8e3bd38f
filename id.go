package todoes

import (
	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"
)

// requestIDHeader carries a client-generated UUID identifying one request. It shows up in the wire log and in
// RequestError, and lets one match a client-side failure with the backend's own logs.
const requestIDHeader = "X-Request-Id"

func newRequestID() string {
	u, err := uuid.NewV4()
	if err != nil {
		log.WithField("cause", err).Warning("Could not generate request id")
		return ""
	}
	return u.String()
}
