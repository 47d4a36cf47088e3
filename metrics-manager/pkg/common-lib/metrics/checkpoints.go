package metrics

// DeliveryCheckpoint is a stage a delivery unit passes, measured from the time
// its aggregate result was handed to the dispatcher
type DeliveryCheckpoint int

const (
	Dispatcher_Dequeued DeliveryCheckpoint = 0
	Descriptor_Resolved DeliveryCheckpoint = 1
	Predictor_Posted    DeliveryCheckpoint = 2

	Len_DeliveryCheckpoint = 3
)

type DeliveryCheckpointName string

const (
	Dispatcher_Dequeued_Name DeliveryCheckpointName = "DIS_DEQUEUED"
	Descriptor_Resolved_Name DeliveryCheckpointName = "SGD_RESOLVED"
	Predictor_Posted_Name    DeliveryCheckpointName = "PRED_POSTED"
)

var checkpointNames = [Len_DeliveryCheckpoint]DeliveryCheckpointName{
	Dispatcher_Dequeued_Name,
	Descriptor_Resolved_Name,
	Predictor_Posted_Name,
}

func (c DeliveryCheckpoint) Name() DeliveryCheckpointName {
	if c < 0 || c >= Len_DeliveryCheckpoint {
		return "UNKNOWN"
	}
	return checkpointNames[c]
}
