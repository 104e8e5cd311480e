package types

// SystemStatus represents the current system state
type SystemStatus struct {
	State            string `json:"state"`
	ChannelCount     int    `json:"channel_count"`
	TimedChannels    int    `json:"timed_channels"`
	UpdaterRunning   bool   `json:"updater_running"`
	MotionDepth      int    `json:"motion_depth"`
	MotionIdle       bool   `json:"motion_idle"`
	ConnectedClients int    `json:"connected_clients,omitempty"`
}
