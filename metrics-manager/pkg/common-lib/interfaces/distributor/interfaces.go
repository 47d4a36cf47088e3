package distributor

import (
	"context"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

// Interface hands the aggregate results of a tick to independent delivery units.
// Dispatch must not wait for the deliveries to complete.
type Interface interface {
	// Dispatch returns the number of results accepted for delivery
	Dispatch(ctx context.Context, tickId string, results []types.AggregateResult) int
}
