/*
Copyright 2019 Authors of OSM Autoscaler.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package types

import (
	"errors"
	"fmt"
)

const (
	ErrMsg_AuthFailure          = "Failed to obtain an authentication token from NBI"
	ErrMsg_AuthRetriesExhausted = "NBI kept rejecting the authentication token"
	ErrMsg_ScalingDataMissing   = "Scaling group descriptor is missing"
	ErrMsg_SinkDeliveryFailure  = "Predictor did not accept the metric"
	ErrMsg_UnexpectedStatus     = "Unexpected response status"
	ErrMsg_DeliveryQueueFull    = "Delivery queue is full"
)

var Error_AuthFailure = errors.New(ErrMsg_AuthFailure)
var Error_AuthRetriesExhausted = errors.New(ErrMsg_AuthRetriesExhausted)
var Error_ScalingDataMissing = errors.New(ErrMsg_ScalingDataMissing)
var Error_SinkDeliveryFailure = errors.New(ErrMsg_SinkDeliveryFailure)
var Error_UnexpectedStatus = errors.New(ErrMsg_UnexpectedStatus)
var Error_DeliveryQueueFull = errors.New(ErrMsg_DeliveryQueueFull)

// ScalingDataMissingError reports an inventory inconsistency for a single group.
// It matches Error_ScalingDataMissing with errors.Is.
type ScalingDataMissingError struct {
	NsId           string
	VnfMemberIndex int
	Reason         string
}

func (e *ScalingDataMissingError) Error() string {
	return fmt.Sprintf("cannot find scaling group descriptor for ns-id:%s and vnf_member_index:%d: %s",
		e.NsId, e.VnfMemberIndex, e.Reason)
}

func (e *ScalingDataMissingError) Is(target error) bool {
	return target == Error_ScalingDataMissing
}

// Reason label used in metrics for a failed descriptor resolution
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, Error_AuthRetriesExhausted):
		return "auth_retries_exhausted"
	case errors.Is(err, Error_AuthFailure):
		return "auth_failure"
	case errors.Is(err, Error_ScalingDataMissing):
		return "scaling_data_missing"
	case errors.Is(err, Error_UnexpectedStatus):
		return "unexpected_status"
	default:
		return "transport"
	}
}
