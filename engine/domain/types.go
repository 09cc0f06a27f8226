// Package domain defines core domain types, filter criteria, and validation
// for the DriveMatch engine. It acts as the validation gate at pipeline
// entry points.
package domain

import "time"

// VehicleType distinguishes the two catalog categories.
type VehicleType string

const (
	TypeCar  VehicleType = "car"
	TypeBike VehicleType = "bike"
)

// ValidVehicleTypes is the set of recognised vehicle types.
var ValidVehicleTypes = map[VehicleType]bool{
	TypeCar: true, TypeBike: true,
}

// Fuel type values as stored in the catalog.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Electric"
	FuelHybrid   = "Hybrid"
	FuelCNG      = "CNG"
)

// Transmission values as stored in the catalog.
const (
	TransmissionManual    = "Manual"
	TransmissionAutomatic = "Automatic"
)

// Availability status values.
const (
	StatusAvailable    = "Available"
	StatusDiscontinued = "Discontinued"
	StatusUpcoming     = "Upcoming"
)

// Vehicle is a catalog entry. Engine power, torque, and mileage are
// unit-tagged strings as entered by catalog editors ("1497cc", "18 km/l");
// Magnitude extracts their numeric part where engines need one.
type Vehicle struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Brand     string      `json:"brand"`
	Type      VehicleType `json:"type"`
	Variant   string      `json:"variant,omitempty"`
	ModelYear int         `json:"modelYear,omitempty"`

	Price       float64 `json:"price"`
	OnRoadPrice float64 `json:"onRoadPrice,omitempty"`

	Engine       string `json:"engine,omitempty"`
	EnginePower  string `json:"enginePower,omitempty"`
	Torque       string `json:"torque,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	Mileage      string `json:"mileage,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	BodyType     string `json:"bodyType,omitempty"`

	SeatingCapacity int    `json:"seatingCapacity,omitempty"`
	Image           string `json:"image,omitempty"`

	PerformanceScore float64 `json:"performanceScore"`
	EcoScore         float64 `json:"ecoScore"`

	IsTrending  bool     `json:"isTrending"`
	AvgRating   float64  `json:"avgRating,omitempty"`
	ReviewCount int      `json:"reviewCount,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	AvailabilityStatus string    `json:"availabilityStatus,omitempty"`
	CreatedAt          time.Time `json:"createdAt,omitempty"`
}
