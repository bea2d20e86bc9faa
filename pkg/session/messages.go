package session

import (
	"fmt"

	"github.com/kass/emergency-locator/pkg/location"
)

// Status texts shown to the user
const (
	MsgLocating         = "Getting your location..."
	MsgLocated          = "Location found! Now pick a category to search nearby places."
	MsgPermissionDenied = "Location access was denied by the user."
	MsgUnavailable      = "Location information is unavailable."
	MsgTimeout          = "Timed out while getting your location."
	MsgUnknown          = "Unknown error while getting your location."
	MsgUnsupported      = "Geolocation is not supported on this device."
	MsgShareFirst       = "Please share your location first."
	MsgSearching        = "Searching nearby places..."
	MsgNothingFound     = "No places found nearby. Try zooming out the map or picking another category."
	MsgMapAuthFailure   = "Map provider authentication failed. Check your API key."
	MsgMapLoadFailure   = "Failed to load the map. Try again later."
	MsgMapUnavailable   = "The map is unavailable."
	MsgYourLocation     = "Your location"
)

// locationMessage maps a failure kind to its status text
func locationMessage(kind location.Kind) string {
	switch kind {
	case location.PermissionDenied:
		return MsgPermissionDenied
	case location.PositionUnavailable:
		return MsgUnavailable
	case location.Timeout:
		return MsgTimeout
	default:
		return MsgUnknown
	}
}

func foundMessage(n int) string {
	if n == 1 {
		return "1 place found nearby."
	}
	return fmt.Sprintf("%d places found nearby.", n)
}
