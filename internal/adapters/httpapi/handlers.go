package httpapi

import (
	"net/http"

	fleetCommands "github.com/andrescamacho/solarion-go/internal/application/fleet/commands"
	fleetQueries "github.com/andrescamacho/solarion-go/internal/application/fleet/queries"
	planetCommands "github.com/andrescamacho/solarion-go/internal/application/planet/commands"
	"github.com/andrescamacho/solarion-go/internal/application/planet/dtos"
	planetQueries "github.com/andrescamacho/solarion-go/internal/application/planet/queries"
	researchCommands "github.com/andrescamacho/solarion-go/internal/application/research/commands"
	researchQueries "github.com/andrescamacho/solarion-go/internal/application/research/queries"
)

type constructionRequest struct {
	BuildingID int64 `json:"building_id" validate:"required,gt=0"`
}

type trainingRequest struct {
	UnitID   int64 `json:"unit_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type researchRequest struct {
	ResearchID int64 `json:"research_id" validate:"required,gt=0"`
}

type movementRequest struct {
	FromPlanetID int64           `json:"from_planet_id" validate:"gte=0"`
	ToPlanetID   int64           `json:"to_planet_id" validate:"required,gt=0"`
	Type         string          `json:"type" validate:"required,oneof=attack support transport"`
	Units        map[int64]int64 `json:"units" validate:"required,min=1,dive,gt=0"`
	Solarion     int64           `json:"solarion" validate:"gte=0"`
}

type researchView struct {
	Levels  map[int64]int      `json:"levels"`
	Pending []*dtos.PendingDTO `json:"pending"`
}

type movementsView struct {
	Movements []dtos.MovementDTO `json:"movements"`
}

func (a *api) getPlanet(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := a.mediator.Send(r.Context(), &planetQueries.GetPlanetQuery{PlayerID: player})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.(*planetQueries.GetPlanetResponse).Planet)
}

func (a *api) startConstruction(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	gridID, err := pathID(r, "gridID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body constructionRequest
	if err := a.decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := a.mediator.Send(r.Context(), &planetCommands.StartConstructionCommand{
		PlayerID:   player,
		GridID:     gridID,
		BuildingID: body.BuildingID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	c := resp.(*planetCommands.StartConstructionResponse).Construction
	writeJSON(w, http.StatusCreated, dtos.ConstructionToDTO(c, a.clock.Now()))
}

func (a *api) startUpgrade(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	gridID, err := pathID(r, "gridID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := a.mediator.Send(r.Context(), &planetCommands.StartUpgradeCommand{PlayerID: player, GridID: gridID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	u := resp.(*planetCommands.StartUpgradeResponse).Upgrade
	writeJSON(w, http.StatusCreated, dtos.UpgradeToDTO(u, a.clock.Now()))
}

func (a *api) startTraining(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	gridID, err := pathID(r, "gridID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body trainingRequest
	if err := a.decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := a.mediator.Send(r.Context(), &planetCommands.StartTrainingCommand{
		PlayerID: player,
		GridID:   gridID,
		UnitID:   body.UnitID,
		Quantity: body.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	t := resp.(*planetCommands.StartTrainingResponse).Training
	writeJSON(w, http.StatusCreated, dtos.TrainingToDTO(t, a.clock.Now()))
}

func (a *api) listResearch(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := a.mediator.Send(r.Context(), &researchQueries.ListResearchQuery{PlayerID: player})
	if err != nil {
		writeError(w, r, err)
		return
	}
	list := resp.(*researchQueries.ListResearchResponse)
	writeJSON(w, http.StatusOK, researchView{Levels: list.Levels, Pending: list.Pending})
}

func (a *api) startResearch(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body researchRequest
	if err := a.decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := a.mediator.Send(r.Context(), &researchCommands.StartResearchCommand{
		PlayerID:   player,
		ResearchID: body.ResearchID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := resp.(*researchCommands.StartResearchResponse).Research
	writeJSON(w, http.StatusCreated, dtos.ResearchToDTO(res, a.clock.Now()))
}

func (a *api) listMovements(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := a.mediator.Send(r.Context(), &fleetQueries.ListMovementsQuery{PlayerID: player})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movementsView{Movements: resp.(*fleetQueries.ListMovementsResponse).Movements})
}

func (a *api) dispatchFleet(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body movementRequest
	if err := a.decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := a.mediator.Send(r.Context(), &fleetCommands.DispatchFleetCommand{
		PlayerID:     player,
		FromPlanetID: body.FromPlanetID,
		ToPlanetID:   body.ToPlanetID,
		Type:         body.Type,
		Units:        body.Units,
		Solarion:     body.Solarion,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	m := resp.(*fleetCommands.DispatchFleetResponse).Movement
	writeJSON(w, http.StatusCreated, dtos.MovementToDTO(m, a.clock.Now()))
}
