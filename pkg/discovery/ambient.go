package discovery

import (
	"context"
	"strings"
)

// DiscoverAmbient searches every process for the gateway's argument
// signature instead of a specific executable name. This recovers discovery
// when the host product renames its server binary across versions but keeps
// its argument shape stable. One pass, no retry loop; intended to run after
// Discover has exhausted its attempts.
func (f *Finder) DiscoverAmbient(ctx context.Context) *VerifiedEndpoint {
	f.logger.Infof("Ambient discovery started, marker: %s", ambientMarker)

	records := f.enumerate(ctx, f.strategy.ListAllCommand(ambientMarker))

	var candidates []ServerCandidate
	for _, record := range records {
		if !hasSignatureMarkers(record.CommandLine) {
			continue
		}
		// The process-name filter is gone, so the argument markers are the
		// only signature; the strict app-data-dir check stays off.
		if candidate := extractCandidate(record, f.config.ProductName, false); candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}

	f.logger.Debugf("Ambient filtering complete, records: %d, candidates: %d",
		len(records), len(candidates))

	endpoint := f.resolveAndVerify(ctx, candidates)
	if endpoint == nil {
		f.logger.Warnf("Ambient discovery found no verified gateway")
	}
	return endpoint
}

// ambientMarker is the generic textual signature ambient discovery greps
// for: the token-marker name without its leading dashes, which appears only
// in the gateway's arguments.
var ambientMarker = strings.TrimPrefix(tokenMarker, "--")
