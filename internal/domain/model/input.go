package model

// InputKind identifies an operation requested by the UI layer.
type InputKind int

// Input operations. The core never polls devices; the UI enqueues these.
const (
	InputOpenMenu InputKind = iota + 1
	InputCloseMenu
	InputToggleMenu
	InputSelectRoute
	InputStartRace
	InputStartSharedRace
	InputDeletePersonal
	InputCancelRace
	InputToggleGhostVisibility
	InputExternalMenuOpened
)

var inputNames = map[InputKind]string{
	InputOpenMenu:              "open_menu",
	InputCloseMenu:             "close_menu",
	InputToggleMenu:            "toggle_menu",
	InputSelectRoute:           "select_route",
	InputStartRace:             "start_race",
	InputStartSharedRace:       "start_shared_race",
	InputDeletePersonal:        "delete_personal",
	InputCancelRace:            "cancel_race",
	InputToggleGhostVisibility: "toggle_ghost_visibility",
	InputExternalMenuOpened:    "external_menu_opened",
}

func (k InputKind) String() string {
	if n, ok := inputNames[k]; ok {
		return n
	}
	return "unknown"
}

// Input is one queued UI operation. RouteID is used by route-scoped inputs;
// Shared carries the selected shared ghost for InputStartSharedRace.
type Input struct {
	Kind    InputKind
	RouteID string
	Shared  *SharedGhostMetadata
}
