package domain

// Role identifies which side of the system an actor belongs to.
type Role string

const (
	RoleRider  Role = "RIDER"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

// ActorContext identifies the party performing an operation. Authorization is
// an explicit precondition of every lifecycle call rather than ambient session
// state.
type ActorContext struct {
	Role Role
	ID   string
}

// RiderActor builds an ActorContext for a rider.
func RiderActor(id string) ActorContext { return ActorContext{Role: RoleRider, ID: id} }

// DriverActor builds an ActorContext for a driver.
func DriverActor(id string) ActorContext { return ActorContext{Role: RoleDriver, ID: id} }

// AdminActor builds an ActorContext for the dispatch console. Dispatch is a
// shared station so it carries no individual identity.
func AdminActor() ActorContext { return ActorContext{Role: RoleAdmin} }
