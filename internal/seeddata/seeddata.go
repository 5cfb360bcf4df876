// Package seeddata carries the bundled static reference data shipped
// with the app: the known solar sites, their initial visit schedules,
// the demo generation series and the two built-in accounts. The seed
// pipeline transfers these into the local store exactly once.
package seeddata

// BundledSite is a reference site shipped with the app. IDs are
// static and preserved across installs.
type BundledSite struct {
	ID        string
	Name      string
	Capacity  string
	Latitude  float64
	Longitude float64
}

// BundledSchedule is an initial visit entry shipped with the app.
type BundledSchedule struct {
	ID          string
	SiteID      string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM AM/PM
	Title       string
	Description string
}

// GenerationDay is one day of demo generation chart data.
type GenerationDay struct {
	Date       string // YYYY-MM-DD
	EnergyKwh  float64
	PeakPower  float64
	Efficiency float64
}

// SeedUser is a built-in account. Passwords are digested at seed time.
type SeedUser struct {
	ID       string
	Username string
	Password string
	FullName string
	Role     string
	Email    string
}

var Sites = []BundledSite{
	{ID: "site-001", Name: "Bhadla Solar Park", Capacity: "2245 MW", Latitude: 27.539398, Longitude: 71.914726},
	{ID: "site-002", Name: "Pavagada Solar Park", Capacity: "2050 MW", Latitude: 14.181400, Longitude: 77.447000},
	{ID: "site-003", Name: "Kurnool Ultra Mega Solar Park", Capacity: "1000 MW", Latitude: 15.681522, Longitude: 78.283749},
	{ID: "site-004", Name: "Rewa Ultra Mega Solar", Capacity: "750 MW", Latitude: 24.497042, Longitude: 81.184649},
	{ID: "site-005", Name: "Kamuthi Solar Power Project", Capacity: "648 MW", Latitude: 9.349931, Longitude: 78.392000},
	{ID: "site-006", Name: "Charanka Solar Park", Capacity: "600 MW", Latitude: 23.900000, Longitude: 71.200000},
}

var Schedules = []BundledSchedule{
	{ID: "sched-001", SiteID: "site-001", Date: "2025-03-01", Time: "09:00 AM", Title: "Quarterly inverter inspection", Description: "Check inverter banks 1-4 and log serials"},
	{ID: "sched-002", SiteID: "site-002", Date: "2025-03-01", Time: "02:00 PM", Title: "Panel cleaning audit", Description: "Verify contractor cleaning log for block C"},
	{ID: "sched-003", SiteID: "site-003", Date: "2025-03-02", Time: "10:30 AM", Title: "Wiring integrity survey", Description: ""},
	{ID: "sched-004", SiteID: "site-004", Date: "2025-03-03", Time: "08:00 AM", Title: "Transformer bay walkdown", Description: "Thermal camera pass on bays 2 and 5"},
	{ID: "sched-005", SiteID: "site-005", Date: "2025-03-05", Time: "11:00 AM", Title: "Monthly performance review", Description: ""},
}

var Generation = []GenerationDay{
	{Date: "2025-02-10", EnergyKwh: 52.4, PeakPower: 8.1, Efficiency: 91.2},
	{Date: "2025-02-11", EnergyKwh: 48.9, PeakPower: 7.8, Efficiency: 88.5},
	{Date: "2025-02-12", EnergyKwh: 55.1, PeakPower: 8.4, Efficiency: 93.0},
	{Date: "2025-02-13", EnergyKwh: 43.7, PeakPower: 7.2, Efficiency: 84.1},
	{Date: "2025-02-14", EnergyKwh: 38.2, PeakPower: 6.5, Efficiency: 79.8},
	{Date: "2025-02-15", EnergyKwh: 0, PeakPower: 0, Efficiency: 0},
	{Date: "2025-02-16", EnergyKwh: 47.5, PeakPower: 7.6, Efficiency: 87.3},
	{Date: "2025-02-17", EnergyKwh: 51.8, PeakPower: 8.0, Efficiency: 90.6},
	{Date: "2025-02-18", EnergyKwh: 44.9, PeakPower: 7.3, Efficiency: 85.2},
	{Date: "2025-02-19", EnergyKwh: 36.4, PeakPower: 6.2, Efficiency: 77.5},
	{Date: "2025-02-20", EnergyKwh: 49.6, PeakPower: 7.9, Efficiency: 89.1},
	{Date: "2025-02-21", EnergyKwh: 53.3, PeakPower: 8.2, Efficiency: 92.4},
	{Date: "2025-02-22", EnergyKwh: 41.0, PeakPower: 6.9, Efficiency: 82.6},
	{Date: "2025-02-23", EnergyKwh: 46.2, PeakPower: 7.5, Efficiency: 86.0},
}

var Users = []SeedUser{
	{ID: "user-001", Username: "engineer", Password: "engineer123", FullName: "Field Engineer", Role: "engineer", Email: "engineer@solarops.local"},
	{ID: "user-002", Username: "manager", Password: "manager123", FullName: "Site Manager", Role: "client", Email: "manager@solarops.local"},
}
