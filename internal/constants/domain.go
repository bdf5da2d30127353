package constants

type (
	PilotStatus       string
	WorkOrderStatus   string
	WorkOrderType     string
	TaskStatus        string
	ApplicationStatus string
)

const (
	PilotIdle  PilotStatus = "idle"
	PilotBusy  PilotStatus = "busy"
	PilotLeave PilotStatus = "leave"
)

func (s PilotStatus) Valid() bool {
	switch s {
	case PilotIdle, PilotBusy, PilotLeave:
		return true
	}
	return false
}

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderProcessing WorkOrderStatus = "processing"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderPending, WorkOrderProcessing, WorkOrderCompleted, WorkOrderCancelled:
		return true
	}
	return false
}

const (
	WorkOrderInspection WorkOrderType = "inspection"
	WorkOrderDelivery   WorkOrderType = "delivery"
	WorkOrderEmergency  WorkOrderType = "emergency"
	WorkOrderSurvey     WorkOrderType = "survey"
)

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCompleted ApplicationStatus = "completed"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationCompleted:
		return true
	}
	return false
}

// Aircraft model activation flags.
const (
	AircraftActive   = 1
	AircraftInactive = 0
)
