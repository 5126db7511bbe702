package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// StartJanitor purges expired memory entries on a cron schedule
// (seconds field included, e.g. "0 */5 * * * *" or "@every 1m").
// The caller stops the returned cron.
func StartJanitor(c *Memory, schedule string) (*cron.Cron, error) {
	cr := cron.New(cron.WithSeconds())
	if _, err := cr.AddFunc(schedule, func() {
		if n := c.Purge(); n > 0 {
			log.Debug().Int("purged", n).Int("remaining", c.Len()).Msg("price cache purged")
		}
	}); err != nil {
		return nil, fmt.Errorf("register cache janitor: %w", err)
	}
	cr.Start()
	return cr, nil
}
