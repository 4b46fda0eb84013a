package mqtt

// statusTopic is where the bridge publishes its own online/offline
// status (retained). Deliberately outside any homie base topic so the
// bridge never shows up as a half-described homie device.
const statusTopic = "homiegraf/status"

// StatusTopic returns the bridge's own status topic.
func StatusTopic() string {
	return statusTopic
}

// HomieWildcard returns the subscription filter covering an entire homie
// tree under the given base topic.
//
// Example: HomieWildcard("homie") == "homie/#"
func HomieWildcard(baseTopic string) string {
	return baseTopic + "/#"
}
