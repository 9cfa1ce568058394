package types

// StoreAction is the action name of a remote store request.
type StoreAction string

func (a StoreAction) String() string {
	return string(a)
}

const (
	ActionGetData        StoreAction = "GET_DATA"
	ActionUpdateLocation StoreAction = "UPDATE_LOCATION"
	ActionAddGeofence    StoreAction = "ADD_GEOFENCE"
	ActionEditGeofence   StoreAction = "EDIT_GEOFENCE"
	ActionDeleteGeofence StoreAction = "DELETE_GEOFENCE"
	ActionToggleGeofence StoreAction = "TOGGLE_GEOFENCE"
	ActionCheckIn        StoreAction = "CHECK_IN"
	ActionSendSOS        StoreAction = "SEND_SOS"
	ActionSetSettings    StoreAction = "SET_SETTINGS"
)

// IsMutating reports whether the action changes the geofence set.
func (a StoreAction) IsMutating() bool {
	switch a {
	case ActionAddGeofence, ActionEditGeofence, ActionDeleteGeofence, ActionToggleGeofence:
		return true
	default:
		return false
	}
}
