package workers

import (
	"context"
	"log"
	"time"
)

// PremiumExpirer is implemented by the billing service.
type PremiumExpirer interface {
	ExpireLapsedPremium(ctx context.Context) (int64, error)
}

// StartPremiumExpiryWorker periodically demotes profiles whose paid period
// has lapsed. Stripe normally tells us about cancellations, but a
// subscription can end without a final event reaching us (webhook outage,
// deleted endpoint), so the sweep is the backstop. Runs until ctx is done.
func StartPremiumExpiryWorker(ctx context.Context, expirer PremiumExpirer, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, expirer)
			}
		}
	}()
}

func sweep(ctx context.Context, expirer PremiumExpirer) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	expired, err := expirer.ExpireLapsedPremium(sweepCtx)
	if err != nil {
		log.Printf("Premium expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Premium expiry sweep demoted %d profiles", expired)
	}
}
