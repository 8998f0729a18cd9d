package remote

// Outbound command routes on the API server.
const (
	RoutePrevious     = "/api/v1/previous"
	RouteNext         = "/api/v1/next"
	RoutePlay         = "/api/v1/play"
	RoutePause        = "/api/v1/pause"
	RouteToggleMute   = "/api/v1/toggle-mute"
	RouteShuffle      = "/api/v1/shuffle"
	RouteVolume       = "/api/v1/volume"
	RouteSwitchRepeat = "/api/v1/switch-repeat"
	RouteSeekTo       = "/api/v1/seek-to"
)
