package analytics

import (
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// Device classes reported by UserAgentParser.Parse.
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// DeviceInfo is what a user agent string tells about the visitor.
type DeviceInfo struct {
	Device  string
	Browser string
	OS      string
}

// UserAgentParser classifies user agent strings with the bundled uap-core
// regexes.
type UserAgentParser struct {
	parser *uaparser.Parser
}

// NewUserAgentParser loads the embedded regex definitions.
func NewUserAgentParser() *UserAgentParser {
	return &UserAgentParser{parser: uaparser.NewFromSaved()}
}

// Parse classifies ua. An empty string yields unknown everywhere.
func (p *UserAgentParser) Parse(ua string) DeviceInfo {
	if ua == "" {
		return DeviceInfo{Device: DeviceUnknown, Browser: DeviceUnknown, OS: DeviceUnknown}
	}

	client := p.parser.Parse(ua)

	return DeviceInfo{
		Device:  deviceClass(client, ua),
		Browser: family(client.UserAgent.Family),
		OS:      family(client.Os.Family),
	}
}

var botMarkers = []string{"bot", "crawler", "spider", "slurp", "facebookexternalhit", "preview"}

func deviceClass(client *uaparser.Client, ua string) string {
	lower := strings.ToLower(ua)

	if client.Device.Family == "Spider" || containsAny(lower, botMarkers) {
		return DeviceBot
	}

	osFamily := client.Os.Family

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return DeviceTablet
	case osFamily == "Android" && !strings.Contains(lower, "mobile"):
		return DeviceTablet
	case osFamily == "iOS" || osFamily == "Android" || strings.Contains(lower, "mobile"):
		return DeviceMobile
	case strings.HasPrefix(osFamily, "Windows") || osFamily == "Mac OS X" || osFamily == "Linux" ||
		osFamily == "Ubuntu" || osFamily == "Chrome OS":
		return DeviceDesktop
	}

	return DeviceUnknown
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}

	return false
}

func family(name string) string {
	if name == "" || name == "Other" {
		return DeviceUnknown
	}

	return name
}
