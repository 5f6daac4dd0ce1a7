package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/google/uuid"

	"github.com/castgo/castv2/pkg/castv2err"
)

// ServiceType is the mDNS service type Cast receivers advertise under
// (spec.md §6).
const ServiceType = "_googlecast._tcp"

// domain is the mDNS domain every local-network query targets.
const domain = "local."

// Run queries ServiceType for at most duration, invoking callback once
// per discovered device. Responses missing an A-record, or whose
// instance name doesn't parse as a UUID, are skipped rather than treated
// as fatal (spec.md §9, open questions #4 and #5). Devices already seen
// (by IP address) during this run are not reported again.
func Run(ctx context.Context, duration time.Duration, callback func(DeviceInfo)) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return castv2err.New(castv2err.Dns, err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 32)
	removed := make(chan *zeroconf.ServiceEntry, 32)

	browseCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	seen := make(map[string]struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				handleEntry(entry, seen, callback)
			case <-removed:
				// Expiring records carry no new device information; this
				// run only ever reports newly-seen devices.
			case <-browseCtx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(browseCtx, ServiceType, domain, entries, removed); err != nil {
		return castv2err.New(castv2err.Dns, err)
	}

	<-browseCtx.Done()
	<-done
	return nil
}

// handleEntry applies the per-response policy: skip silently on a missing
// A-record or an unparsable UUID, and only invoke callback (after
// recording the IP as seen) the first time an address is observed. This
// corrects the teacher's inverted dedup check, which invoked the callback
// only when an address was believed new but never actually recorded it
// first, leaving the seen set permanently empty (spec.md §9, open
// question #5).
func handleEntry(entry *zeroconf.ServiceEntry, seen map[string]struct{}, callback func(DeviceInfo)) {
	if len(entry.AddrIPv4) == 0 {
		return
	}
	ip := entry.AddrIPv4[0]

	key := ip.String()
	if _, ok := seen[key]; ok {
		return
	}

	id, err := parseInstanceUUID(entry.Instance)
	if err != nil {
		return
	}

	seen[key] = struct{}{}
	callback(DeviceInfo{IPAddr: ip, UUID: id})
}

// parseInstanceUUID parses a device UUID out of an mDNS instance name,
// which is the record name with any trailing ".local" suffix already
// stripped by the resolver, or still attached depending on the record
// source (spec.md §6).
func parseInstanceUUID(instance string) (uuid.UUID, error) {
	name := strings.TrimSuffix(instance, ".local")
	name = strings.TrimSuffix(name, ".")
	id, err := uuid.Parse(name)
	if err != nil {
		return uuid.UUID{}, castv2err.New(castv2err.UuidParse, err)
	}
	return id, nil
}
