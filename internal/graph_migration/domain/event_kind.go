package domain

// EventKind is the closed set of behavioural event relationships.
type EventKind int

const (
	EventOther EventKind = iota
	EventView
	EventClick
	EventAddToCart
)

func ParseEventKind(eventType string) EventKind {
	switch eventType {
	case "view":
		return EventView
	case "click":
		return EventClick
	case "add_to_cart":
		return EventAddToCart
	default:
		return EventOther
	}
}

// RelType is the relationship type written for the kind.
func (k EventKind) RelType() string {
	switch k {
	case EventView:
		return "VIEWED"
	case EventClick:
		return "CLICKED"
	case EventAddToCart:
		return "ADDED_TO_CART"
	default:
		return "INTERACTED"
	}
}

func (k EventKind) String() string { return k.RelType() }
