package main

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/castgo/castv2/pkg/config"
	"github.com/castgo/castv2/pkg/device"
	"github.com/castgo/castv2/pkg/discovery"
	"github.com/castgo/castv2/pkg/reactor"
	"github.com/castgo/castv2/pkg/transport"
)

// parseTarget parses the <ip> <uuid> pair common to connect/launch/interactive.
func parseTarget(ipArg, uuidArg string) (discovery.DeviceInfo, error) {
	id, err := uuid.Parse(uuidArg)
	if err != nil {
		return discovery.DeviceInfo{}, fmt.Errorf("invalid device uuid %q: %w", uuidArg, err)
	}
	ip := net.ParseIP(ipArg)
	if ip == nil || ip.To4() == nil {
		return discovery.DeviceInfo{}, fmt.Errorf("invalid IPv4 address %q", ipArg)
	}
	return discovery.DeviceInfo{IPAddr: ip, UUID: id}, nil
}

// dial opens a Reactor and a Device against info, pumping the reactor's
// host loop (spec.md §8's driver pattern: poll, hand events to the
// device, drain its events) until the transport reaches Connected or
// timeout elapses.
func dial(info discovery.DeviceInfo, cfg config.Config) (*device.Device, *reactor.Reactor, error) {
	r, err := reactor.NewReactor()
	if err != nil {
		return nil, nil, err
	}

	d, err := device.ConnectWithMaxSize(info, r, uint32(cfg.MaxMessageSize))
	if err != nil {
		r.Close()
		return nil, nil, err
	}

	deadline := time.Now().Add(cfg.ConnectTimeout)
	for d.State() != transport.Connected {
		if time.Now().After(deadline) {
			d.Close()
			r.Close()
			return nil, nil, fmt.Errorf("timed out waiting for connection to %s", info.IPAddr)
		}
		events, err := r.Poll(cfg.ReactorPollTimeoutMillis)
		if err != nil {
			d.Close()
			r.Close()
			return nil, nil, err
		}
		for _, ev := range events {
			if ev.Token != d.Token() {
				continue
			}
			if err := d.HandleIO(ev); err != nil {
				d.Close()
				r.Close()
				return nil, nil, err
			}
		}
	}

	return d, r, nil
}

// pumpUntil drives the reactor/device loop until cond reports done, or
// the deadline passes.
func pumpUntil(d *device.Device, r *reactor.Reactor, cfg config.Config, deadline time.Time, cond func() bool) error {
	for !cond() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for response")
		}
		events, err := r.Poll(cfg.ReactorPollTimeoutMillis)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.Token != d.Token() {
				continue
			}
			if err := d.HandleIO(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
