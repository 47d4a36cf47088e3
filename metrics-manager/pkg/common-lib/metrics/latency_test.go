package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_GetLatencyReport(t *testing.T) {
	testCases := []struct {
		name  string
		start int
		gap   int
		count int
		p50   int
		p90   int
		p99   int
	}{
		{
			name:  "Test 1, start 1",
			start: 1,
			gap:   1,
			count: 1,
			p50:   1,
			p90:   1,
			p99:   1,
		},
		{
			name:  "Test 1-100, start 1",
			start: 1,
			gap:   1,
			count: 100,
			p50:   50,
			p90:   90,
			p99:   99,
		},
		{
			name:  "Test 1-99, start 1",
			start: 1,
			gap:   1,
			count: 99,
			p50:   50,
			p90:   90,
			p99:   99,
		},
		{
			name:  "Test 1-1000, start 10",
			start: 10,
			gap:   1,
			count: 1000,
			p50:   509,
			p90:   909,
			p99:   999,
		},
		{
			name:  "Test 1-1M, start 1",
			start: 1,
			gap:   1,
			count: 1000000,
			p50:   500000,
			p90:   900000,
			p99:   990000,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.start

			latency := NewLatencyMetrics()
			for i := 0; i < tt.count; i++ {
				latency.AddLatencyMetrics(time.Duration(start) * time.Millisecond)
				start += tt.gap
			}

			report := latency.GetSummary()
			t.Logf("Test [%s], p50 %v, p90 %v, p99 %v, count %v", tt.name, report.P50, report.P90, report.P99, report.TotalCount)
			assert.Equal(t, time.Duration(tt.p50)*time.Millisecond, report.P50)
			assert.Equal(t, time.Duration(tt.p90)*time.Millisecond, report.P90)
			assert.Equal(t, time.Duration(tt.p99)*time.Millisecond, report.P99)
			assert.Equal(t, tt.count, report.TotalCount)
		})
	}
}

func Test_DeliveryLatencies(t *testing.T) {
	d := NewDeliveryLatencies()

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Add(Descriptor_Resolved, time.Duration(i)*time.Millisecond)
			d.Add(Predictor_Posted, time.Duration(2*i)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	resolved := d.Summary(Descriptor_Resolved)
	assert.Equal(t, 100, resolved.TotalCount)
	assert.Equal(t, 50*time.Millisecond, resolved.P50)
	assert.Equal(t, 99*time.Millisecond, resolved.P99)

	posted := d.Summary(Predictor_Posted)
	assert.Equal(t, 180*time.Millisecond, posted.P90)

	assert.Equal(t, 0, d.Summary(Dispatcher_Dequeued).TotalCount)

	// out of range checkpoints are ignored
	d.Add(Len_DeliveryCheckpoint, time.Second)

	d.PrintLatencyReport()
	assert.Equal(t, 0, d.Summary(Descriptor_Resolved).TotalCount, "report starts a new window")
}

func Test_CheckpointName(t *testing.T) {
	assert.Equal(t, Predictor_Posted_Name, Predictor_Posted.Name())
	assert.Equal(t, DeliveryCheckpointName("UNKNOWN"), DeliveryCheckpoint(7).Name())
}
