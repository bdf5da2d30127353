package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAircraftStats  CachePrefix = "STATS_AIRCRAFT"
	CachePrefixPilotStats     CachePrefix = "STATS_PILOTS"
	CachePrefixWorkOrderStats CachePrefix = "STATS_WORK_ORDERS"
	CachePrefixAircraftOpts   CachePrefix = "AIRCRAFT_OPTIONS"
)
