package fraud

import (
	"context"
	"net/netip"
	"regexp"
	"strings"

	"github.com/richxcame/gear-rental/pkg/logger"
	"go.uber.org/zap"
)

var botUserAgent = regexp.MustCompile(`(?i)bot|crawler|spider|scraper`)

// reservedPrefixes are special-purpose ranges not covered by the netip helpers
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func isPrivateOrReserved(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified() || addr.IsMulticast() || addr.IsLinkLocalMulticast() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// DeviceAnalyzer inspects the network address, user agent and fingerprint
// of a request. Reputation and fingerprint lookups are best effort.
type DeviceAnalyzer struct {
	reputation   ReputationProvider
	fingerprints FingerprintAnalyzer
}

// Analyze never fails: lookup errors are logged, counted and skipped
func (a *DeviceAnalyzer) Analyze(ctx context.Context, ip, userAgent, fingerprint string) []Signal {
	var signals []Signal
	log := logger.WithContext(ctx)

	if addr, err := netip.ParseAddr(strings.TrimSpace(ip)); err == nil {
		if isPrivateOrReserved(addr) {
			signals = append(signals, Signal{
				Type:        SignalDeviceFingerprint,
				Severity:    SeverityLow,
				Confidence:  0.5,
				Description: "Request from a private or reserved network address",
				Metadata:    map[string]interface{}{"ip_address": ip},
			})
		} else {
			anonymizing, err := a.reputation.IsAnonymizing(ctx, addr.String())
			switch {
			case err != nil:
				enrichmentFailuresTotal.WithLabelValues(enrichmentReputation).Inc()
				log.Warn("ip reputation lookup failed", zap.String("ip_address", ip), zap.Error(err))
			case anonymizing:
				signals = append(signals, Signal{
					Type:        SignalDeviceFingerprint,
					Severity:    SeverityMedium,
					Confidence:  0.8,
					Description: "Request through a VPN or proxy",
					Metadata:    map[string]interface{}{"ip_address": ip},
				})
			}
		}
	}

	if strings.TrimSpace(userAgent) == "" || botUserAgent.MatchString(userAgent) {
		signals = append(signals, Signal{
			Type:        SignalDeviceFingerprint,
			Severity:    SeverityHigh,
			Confidence:  0.9,
			Description: "Automated or missing user agent",
			Metadata:    map[string]interface{}{"user_agent": userAgent},
		})
	}

	if fingerprint != "" && a.fingerprints != nil {
		found, err := a.fingerprints.Analyze(ctx, fingerprint)
		if err != nil {
			enrichmentFailuresTotal.WithLabelValues(enrichmentFingerprint).Inc()
			log.Warn("device fingerprint analysis failed", zap.Error(err))
		} else {
			for _, s := range found {
				if s.Validate() == nil {
					signals = append(signals, s)
				}
			}
		}
	}

	return signals
}

// classifyDeviceTrust maps device signals to a trust level. A single high
// signal stays neutral; only a critical signal, more than two highs or more
// than three signals in total escalate.
func classifyDeviceTrust(signals []Signal) DeviceTrustLevel {
	if len(signals) == 0 {
		return DeviceTrusted
	}
	high := 0
	for _, s := range signals {
		switch s.Severity {
		case SeverityCritical:
			return DeviceBlocked
		case SeverityHigh:
			high++
		}
	}
	if high > 2 || len(signals) > 3 {
		return DeviceSuspicious
	}
	return DeviceNeutral
}
