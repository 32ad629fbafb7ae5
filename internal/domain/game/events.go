package game

// EventType names a notification pushed to reactive clients
type EventType string

const (
	EventPlanetUpdated EventType = "planet.updated"
	EventUserUpdated   EventType = "user.updated"
)

// Event tells clients that some state changed and should be re-read
type Event struct {
	Type     EventType `json:"type"`
	PlanetID int64     `json:"planet_id,omitempty"`
	UserID   int64     `json:"user_id,omitempty"`
}

func PlanetUpdated(planetID int64) Event {
	return Event{Type: EventPlanetUpdated, PlanetID: planetID}
}

func UserUpdated(userID int64) Event {
	return Event{Type: EventUserUpdated, UserID: userID}
}

// EventPublisher delivers committed events
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
