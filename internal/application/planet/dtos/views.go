package dtos

import (
	"time"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// PendingDTO is a running timed action as clients see it
type PendingDTO struct {
	ID        int64      `json:"id"`
	Kind      string     `json:"kind"`
	EndedAt   *time.Time `json:"ended_at"`
	Remaining int64      `json:"remaining"`

	BuildingID *int64 `json:"building_id,omitempty"`
	UnitID     *int64 `json:"unit_id,omitempty"`
	ResearchID *int64 `json:"research_id,omitempty"`
	Level      int    `json:"level,omitempty"`
	Quantity   int64  `json:"quantity,omitempty"`
}

func pending(e timer.Entity, now time.Time) *PendingDTO {
	dto := &PendingDTO{
		ID:        e.PendingID(),
		Kind:      string(e.Kind()),
		Remaining: e.Remaining(now),
	}
	if end := e.EndsAt(); !end.IsZero() {
		dto.EndedAt = &end
	}
	return dto
}

// ConstructionToDTO converts a pending construction
func ConstructionToDTO(c *game.Construction, now time.Time) *PendingDTO {
	if c == nil {
		return nil
	}
	dto := pending(c, now)
	id := c.BuildingID
	dto.BuildingID = &id
	dto.Level = c.Level
	return dto
}

// UpgradeToDTO converts a pending upgrade
func UpgradeToDTO(u *game.Upgrade, now time.Time) *PendingDTO {
	if u == nil {
		return nil
	}
	dto := pending(u, now)
	id := u.BuildingID
	dto.BuildingID = &id
	dto.Level = u.Level
	return dto
}

// TrainingToDTO converts a pending training
func TrainingToDTO(t *game.Training, now time.Time) *PendingDTO {
	if t == nil {
		return nil
	}
	dto := pending(t, now)
	id := t.UnitID
	dto.UnitID = &id
	dto.Quantity = t.Quantity
	return dto
}

// ResearchToDTO converts a pending research job
func ResearchToDTO(r *game.Research, now time.Time) *PendingDTO {
	if r == nil {
		return nil
	}
	dto := pending(r, now)
	id := r.ResearchID
	dto.ResearchID = &id
	dto.Level = r.Level
	return dto
}

// GridDTO is one slot of the planet surface with whatever is running on it
type GridDTO struct {
	ID           int64       `json:"id"`
	X            int         `json:"x"`
	Y            int         `json:"y"`
	BuildingID   *int64      `json:"building_id"`
	Level        *int        `json:"level"`
	Construction *PendingDTO `json:"construction"`
	Upgrade      *PendingDTO `json:"upgrade"`
	Training     *PendingDTO `json:"training"`
}

// PlanetDTO is the planet screen payload
type PlanetDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	X        int64           `json:"x"`
	Y        int64           `json:"y"`
	Solarion int64           `json:"solarion"`
	Capacity int64           `json:"capacity"`
	Garrison map[int64]int64 `json:"garrison"`
	Grids    []GridDTO       `json:"grids"`
}

// PlanetSnapshot is everything needed to render a planet
type PlanetSnapshot struct {
	Planet        *game.Planet
	Grids         []*game.Grid
	Garrison      game.Fleet
	Constructions []*game.Construction
	Upgrades      []*game.Upgrade
	Trainings     []*game.Training
}

// Entities returns every pending record of the snapshot
func (s *PlanetSnapshot) Entities() []timer.Entity {
	out := make([]timer.Entity, 0, len(s.Constructions)+len(s.Upgrades)+len(s.Trainings))
	for _, c := range s.Constructions {
		out = append(out, c)
	}
	for _, u := range s.Upgrades {
		out = append(out, u)
	}
	for _, t := range s.Trainings {
		out = append(out, t)
	}
	return out
}

// PlanetToDTO renders a snapshot, computing remaining times against now
func PlanetToDTO(s *PlanetSnapshot, now time.Time) *PlanetDTO {
	constructions := make(map[int64]*game.Construction, len(s.Constructions))
	for _, c := range s.Constructions {
		constructions[c.GridID] = c
	}
	upgrades := make(map[int64]*game.Upgrade, len(s.Upgrades))
	for _, u := range s.Upgrades {
		upgrades[u.GridID] = u
	}
	trainings := make(map[int64]*game.Training, len(s.Trainings))
	for _, t := range s.Trainings {
		trainings[t.GridID] = t
	}

	grids := make([]GridDTO, len(s.Grids))
	for i, g := range s.Grids {
		grids[i] = GridDTO{
			ID:           g.ID,
			X:            g.X,
			Y:            g.Y,
			BuildingID:   g.BuildingID,
			Level:        g.Level,
			Construction: ConstructionToDTO(constructions[g.ID], now),
			Upgrade:      UpgradeToDTO(upgrades[g.ID], now),
			Training:     TrainingToDTO(trainings[g.ID], now),
		}
	}

	garrison := make(map[int64]int64, len(s.Garrison))
	for id, qty := range s.Garrison {
		garrison[id] = qty
	}

	return &PlanetDTO{
		ID:       s.Planet.ID,
		Name:     s.Planet.Name,
		X:        s.Planet.X,
		Y:        s.Planet.Y,
		Solarion: s.Planet.Solarion,
		Capacity: s.Planet.Capacity,
		Garrison: garrison,
		Grids:    grids,
	}
}

// MovementDTO is a fleet in flight
type MovementDTO struct {
	ID            int64           `json:"id"`
	Type          string          `json:"type"`
	UserID        int64           `json:"user_id"`
	StartPlanetID int64           `json:"start_planet_id"`
	EndPlanetID   int64           `json:"end_planet_id"`
	Units         map[int64]int64 `json:"units"`
	Solarion      int64           `json:"solarion"`
	CreatedAt     time.Time       `json:"created_at"`
	EndedAt       *time.Time      `json:"ended_at"`
	Remaining     int64           `json:"remaining"`
}

// MovementToDTO converts a movement
func MovementToDTO(m *game.Movement, now time.Time) MovementDTO {
	units := make(map[int64]int64, len(m.Units))
	for id, qty := range m.Units {
		units[id] = qty
	}
	dto := MovementDTO{
		ID:            m.ID,
		Type:          string(m.Type),
		UserID:        m.UserID,
		StartPlanetID: m.StartPlanetID,
		EndPlanetID:   m.EndPlanetID,
		Units:         units,
		Solarion:      m.Solarion,
		CreatedAt:     m.CreatedAt,
		Remaining:     m.Remaining(now),
	}
	if end := m.EndsAt(); !end.IsZero() {
		dto.EndedAt = &end
	}
	return dto
}
