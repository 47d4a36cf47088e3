package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	epoch := float64(time.Date(2019, 6, 18, 22, 20, 1, 0, time.Local).Unix())

	assert.Equal(t, "2019-06-18 22:20:01", FormatTimestamp(epoch))
	// fractional seconds are truncated by the layout
	assert.Equal(t, "2019-06-18 22:20:01", FormatTimestamp(epoch+0.789))
}

func TestNewPredictorMetric(t *testing.T) {
	r := &AggregateResult{
		NsId:                   "ns1",
		VnfMemberIndex:         2,
		TotalLoad:              42.5,
		VduCount:               3,
		ScalingGroupDescriptor: "cirros_vnfd-VMs",
		Timestamp:              1560896401,
	}

	m := NewPredictorMetric(r)

	assert.Equal(t, "ns1", m.NsId)
	assert.Equal(t, 2, m.VnfMemberIndex)
	assert.Equal(t, "cirros_vnfd-VMs", m.ScalingGroupDescriptor)
	assert.Equal(t, 3, m.VduCount)
	assert.Equal(t, 42.5, m.CpuLoad)
	assert.Equal(t, FormatTimestamp(1560896401), m.Timestamp)
}

func TestGroupKey(t *testing.T) {
	s := &Sample{NsId: "ns1", VnfMemberIndex: 1, VduName: "vdu1"}
	r := &AggregateResult{NsId: "ns1", VnfMemberIndex: 1}

	assert.Equal(t, s.GetKey(), r.GetKey())
	assert.NotEqual(t, GroupKey{NsId: "ns1", VnfMemberIndex: 2}, s.GetKey())
}

func TestScalingDataMissingError(t *testing.T) {
	var err error = &ScalingDataMissingError{NsId: "ns1", VnfMemberIndex: 4, Reason: "no vnf instance with this member index"}
	wrapped := fmt.Errorf("resolve: %w", err)

	assert.True(t, errors.Is(wrapped, Error_ScalingDataMissing))
	assert.False(t, errors.Is(wrapped, Error_AuthFailure))

	var missing *ScalingDataMissingError
	assert.True(t, errors.As(wrapped, &missing))
	assert.Equal(t, 4, missing.VnfMemberIndex)
	assert.Contains(t, err.Error(), "ns-id:ns1")
}

func TestFailureReason(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "retries exhausted", err: fmt.Errorf("x: %w", Error_AuthRetriesExhausted), expected: "auth_retries_exhausted"},
		{name: "auth failure", err: fmt.Errorf("x: %w", Error_AuthFailure), expected: "auth_failure"},
		{name: "missing data", err: &ScalingDataMissingError{NsId: "ns1"}, expected: "scaling_data_missing"},
		{name: "status", err: fmt.Errorf("%w: 500", Error_UnexpectedStatus), expected: "unexpected_status"},
		{name: "other", err: errors.New("connection refused"), expected: "transport"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FailureReason(tt.err))
		})
	}
}
