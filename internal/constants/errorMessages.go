package constants

const (
	MsgInvalidBody      = "Invalid request body"
	MsgNotFound         = "Resource not found"
	MsgSessionNotFound  = "Session not found"
	MsgDuplicateCode    = "Model code already exists"
	MsgRouteTooShort    = "Route needs at least 2 waypoints"
	MsgInternal         = "Internal server error"
	MsgMissingIDs       = "No ids supplied"
	MsgInvalidStatus    = "Invalid status"
	MsgPilotUnavailable = "Pilot is not idle"
	MsgAircraftInactive = "Aircraft model is disabled"
	MsgOrderNotPending  = "Work order is not pending"
	MsgUpgradeFailed    = "WebSocket upgrade failed"
	MsgTooManyRequests  = "Too many requests"
	MsgInvalidIndex     = "Invalid waypoint index"
	MsgNoRoute          = "No route has been simulated yet"
)
