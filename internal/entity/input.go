package entity

// Action is one recognised client input action (spec §4.1 phase 1). Chat is
// handled outside the entity layer since it never mutates player state.
type Action int

const (
	ActionThrustOn Action = iota
	ActionThrustOff
	ActionRotateLeft
	ActionRotateRight
	ActionRotateStop
	ActionFire
)

// ApplyAction mutates the player's control state for one queued input event
// (spec §4.1 phase 1). Fire is handled separately in phase 4 since it must
// consult the cooldown and produce bullets, which needs World access.
func (p *Player) ApplyAction(a Action) {
	switch a {
	case ActionThrustOn:
		p.SetThrust(true)
	case ActionThrustOff:
		p.SetThrust(false)
	case ActionRotateLeft:
		p.SetRotation(-1)
	case ActionRotateRight:
		p.SetRotation(1)
	case ActionRotateStop:
		p.SetRotation(0)
	}
}
