// Package rtc hands out the ICE server configuration clients use to build
// their peer connections. The server itself never terminates media; the
// handshake it relays leads to direct peer-to-peer transport.
package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/askarin/proxima/internal/config"
)

func DefaultConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// ConfigFor builds the client-facing ICE configuration from config, falling
// back to the default STUN set when none is configured.
func ConfigFor(cfg *config.Config) webrtc.Configuration {
	if cfg == nil || len(cfg.StunURLs) == 0 {
		return DefaultConfig()
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: cfg.StunURLs},
		},
	}
}
