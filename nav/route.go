// Package nav turns a planned route plus a stream of live positions into
// guidance and arrival detection. All distances here are kilometers; the
// fare path uses miles and lives elsewhere.
package nav

import "nextride/models"

// Instruction is one turn of a planned route.
type Instruction struct {
	Text        string             `json:"text"`
	DistanceKm  float64            `json:"distance"` // this step only
	DurationMin float64            `json:"duration"` // this step only
	Maneuver    string             `json:"maneuver"`
	Anchor      models.Coordinates `json:"coordinates"`
}

// Route is the planned path between two points: geometry plus turn
// instructions. Built fresh when navigation starts, discarded when it stops.
// Never persisted.
type Route struct {
	DistanceKm   float64              `json:"distance"`
	DurationMin  float64              `json:"duration"`
	Coordinates  []models.Coordinates `json:"coordinates"`
	Instructions []Instruction        `json:"instructions"`
}

// State is the derived guidance for an active session, recomputed on every
// accepted position sample.
type State struct {
	IsNavigating       bool                `json:"isNavigating"`
	CurrentInstruction *Instruction        `json:"currentInstruction"`
	RemainingKm        float64             `json:"remainingDistance"`
	RemainingMin       float64             `json:"remainingTime"`
	Position           *models.Coordinates `json:"currentPosition"`
	Progress           float64             `json:"routeProgress"` // 0-100
}
