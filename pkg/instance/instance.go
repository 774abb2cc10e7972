package instance

import (
	"os"

	"github.com/angelmondragon/assetdesk-backend/pkg/env"
)

const fallbackID = "local"

// ID names this process in logs. ASSETDESK_INSTANCE_ID wins, then the
// platform's DYNO, then the hostname.
func ID() string {
	if id := env.Get("ASSETDESK_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
