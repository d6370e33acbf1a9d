package utils

import (
	"strings"

	"github.com/mileusna/useragent"
	"github.com/mvavassori/traffic-insights/models"
)

// DeviceInfo is what the tracker's user agent resolves to. Fields are nil
// when the user agent is absent or does not reveal them.
type DeviceInfo struct {
	DeviceType *string
	Browser    *string
	OS         *string
}

func ParseUserAgent(raw string) DeviceInfo {
	if strings.TrimSpace(raw) == "" {
		return DeviceInfo{}
	}

	ua := useragent.Parse(raw)
	return DeviceInfo{
		DeviceType: models.StringPtr(GetDeviceType(&ua)),
		Browser:    models.StringPtr(ua.Name),
		OS:         models.StringPtr(ua.OS),
	}
}

func GetDeviceType(ua *useragent.UserAgent) string {
	if ua.Bot {
		return "bot"
	} else if ua.Tablet {
		return "tablet"
	} else if ua.Mobile {
		return "mobile"
	} else {
		return "pc"
	}
}
