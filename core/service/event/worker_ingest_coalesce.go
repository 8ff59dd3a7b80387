package event

import (
	"context"

	in "event_scraper/core/port/in"

	"golang.org/x/sync/singleflight"
)

// CoalescedIngest lets only one batch run at a time. Callers that arrive while
// a batch is running wait for it and share its report.
type CoalescedIngest struct {
	next  in.IngestService
	group singleflight.Group
}

var _ in.IngestService = (*CoalescedIngest)(nil)

func NewCoalescedIngest(next in.IngestService) *CoalescedIngest {
	return &CoalescedIngest{next: next}
}

// RunBatch joins the running batch or starts one. The batch runs under the
// context of the caller that started it; a waiting caller whose context ends
// returns early while the batch continues.
func (c *CoalescedIngest) RunBatch(ctx context.Context) (*in.BatchReport, error) {
	ch := c.group.DoChan("batch", func() (interface{}, error) {
		return c.next.RunBatch(ctx)
	})

	select {
	case res := <-ch:
		report, _ := res.Val.(*in.BatchReport)
		return report, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
