package jobs

import (
	"context"
	"log"
	"time"

	"votearena/internal/services"
)

// MarketExpiryJob periodically sweeps approved markets past their closing
// date into pending_result. The read path runs the same sweep lazily; this
// job only tightens timeliness for markets nobody is reading.
type MarketExpiryJob struct {
	marketService *services.MarketService
	interval      time.Duration
	stopChan      chan struct{}
}

// NewMarketExpiryJob creates a new expiry sweep job
func NewMarketExpiryJob(marketService *services.MarketService, interval time.Duration) *MarketExpiryJob {
	return &MarketExpiryJob{
		marketService: marketService,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the sweep loop
func (j *MarketExpiryJob) Start() {
	log.Printf("[MarketExpiryJob] starting expiry sweep (interval: %v)", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.marketService.ExpireClosedMarkets(context.Background()); err != nil {
				log.Printf("[MarketExpiryJob] sweep failed: %v", err)
			}
		case <-j.stopChan:
			log.Println("[MarketExpiryJob] stopping expiry sweep")
			return
		}
	}
}

// Stop stops the sweep loop
func (j *MarketExpiryJob) Stop() {
	close(j.stopChan)
}
