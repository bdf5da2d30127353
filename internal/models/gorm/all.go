package gorm

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Route{},
		&AircraftModel{},
		&Pilot{},
		&WorkOrder{},
		&FlightTask{},
		&AirspaceApplication{},
	}
}
