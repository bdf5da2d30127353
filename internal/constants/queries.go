package constants

const (
	CountWorkOrdersByStatus = `
	SELECT status, COUNT(*) AS count FROM work_orders GROUP BY status
	`

	CountPilotsByStatus = `
	SELECT status, COUNT(*) AS count FROM pilots GROUP BY status
	`

	CountAircraftByManufacturer = `
	SELECT manufacturer AS status, COUNT(*) AS count FROM aircraft_models GROUP BY manufacturer
	`

	CountAircraftByActive = `
	SELECT CAST(status AS TEXT) AS status, COUNT(*) AS count FROM aircraft_models GROUP BY status
	`

	CountWorkOrdersCreatedOnDay = `
	SELECT COUNT(*) FROM work_orders WHERE order_no LIKE ?
	`
)
