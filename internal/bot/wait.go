package bot

import (
	"context"
	"time"
)

// sleep waits for d unless the context ends first, in which case it returns
// the context's error immediately. The polling loop paces itself with this
// so shutdown never has to wait out a delay.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
