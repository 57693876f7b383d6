package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/604.1"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaTab     = "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaWinEdge = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	uaMacFF   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14.1; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaBot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDetectDeviceType(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{uaIPhone, DeviceMobile},
		{uaAndroid, DeviceMobile},
		{uaIPad, DeviceTablet},
		{uaTab, DeviceTablet},
		{uaWinEdge, DeviceDesktop},
		{uaMacFF, DeviceDesktop},
		{uaBot, DeviceBot},
		{"curl/8.4.0", DeviceBot},
		{"", DeviceUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectDeviceType(tt.ua), tt.ua)
	}
}

func TestDetectBrowserAndOS(t *testing.T) {
	assert.Equal(t, "Edge", DetectBrowser(uaWinEdge))
	assert.Equal(t, "Windows", DetectOS(uaWinEdge))

	assert.Equal(t, "Firefox", DetectBrowser(uaMacFF))
	assert.Equal(t, "macOS", DetectOS(uaMacFF))

	assert.Equal(t, "Safari", DetectBrowser(uaIPhone))
	assert.Equal(t, "iOS", DetectOS(uaIPhone))

	assert.Equal(t, "Chrome", DetectBrowser(uaAndroid))
	assert.Equal(t, "Android", DetectOS(uaAndroid))

	assert.Equal(t, "Other", DetectBrowser(""))
	assert.Equal(t, "Other", DetectOS(""))
}

func TestClassify(t *testing.T) {
	c := Classify(uaAndroid)

	assert.Equal(t, Client{DeviceType: DeviceMobile, Browser: "Chrome", OS: "Android"}, c)
}

func TestGetClientIP(t *testing.T) {
	assert.Equal(t, "203.0.113.5", GetClientIP("10.0.0.1:5555", "203.0.113.5, 10.0.0.2", ""))
	assert.Equal(t, "198.51.100.7", GetClientIP("10.0.0.1:5555", "", "198.51.100.7"))
	assert.Equal(t, "10.0.0.1", GetClientIP("10.0.0.1:5555", "", ""))
}
