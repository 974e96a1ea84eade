package domain

// Target identifies a downstream system a ticket can be forwarded to.
type Target string

const (
	TargetPOS       Target = "pos"
	TargetShopping  Target = "shopping"
	TargetInventory Target = "inventory"
)

// AuthStyle selects how dispatch credentials are presented.
type AuthStyle string

const (
	AuthStyleNone   AuthStyle = "none"
	AuthStyleBearer AuthStyle = "bearer"
	AuthStyleAPIKey AuthStyle = "api_key"
)
