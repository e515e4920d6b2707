// Package app wires application components and startup helpers.
package app

import (
	"context"
	"fmt"
)

// Pinger is the minimal interface for a store capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// BrokerPinger is the minimal interface for a Kafka client capable of Ping.
type BrokerPinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns the store and broker readiness checks. A nil
// dependency yields a check that always passes, since the memory store and a
// disabled broker have nothing to probe.
func BuildReadinessChecks(store Pinger, broker BrokerPinger) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	storeCheck := func(ctx context.Context) error {
		if store == nil {
			return nil
		}
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("store ping: %w", err)
		}
		return nil
	}
	brokerCheck := func(ctx context.Context) error {
		if broker == nil {
			return nil
		}
		if err := broker.Ping(ctx); err != nil {
			return fmt.Errorf("broker ping: %w", err)
		}
		return nil
	}
	return storeCheck, brokerCheck
}
