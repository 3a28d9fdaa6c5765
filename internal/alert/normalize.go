package alert

import (
	"strings"
	"time"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// Labels of the fields Datto puts in the first fields section.
const (
	LabelCategory          = "Category"
	LabelDescription       = "Description"
	LabelAlertType         = "Alert Type"
	LabelTriggerDetails    = "Trigger Details"
	LabelDeviceDescription = "Device Description"
	LabelLastUser          = "Last User"
	LabelOS                = "OS"
)

// Normalize turns a Datto RMM webhook body into a notify.Event. now stamps
// the event since Datto payloads carry no timestamp.
func Normalize(payload []byte, now time.Time) (notify.Event, error) {
	blocks, err := ParseBlocks(payload)
	if err != nil {
		return notify.Event{}, err
	}

	device, site := ParseHeader(blocks)
	ev := notify.Event{
		Source:            notify.SourceDatto,
		DeviceOrContact:   device,
		SiteOrLocation:    site,
		AlertType:         ExtractField(blocks, LabelAlertType),
		Category:          ExtractField(blocks, LabelCategory),
		Description:       ExtractField(blocks, LabelDescription),
		TriggerDetails:    ExtractField(blocks, LabelTriggerDetails),
		DeviceDescription: ExtractField(blocks, LabelDeviceDescription),
		LastUser:          ExtractField(blocks, LabelLastUser),
		OS:                ExtractField(blocks, LabelOS),
		Links:             ExtractLinks(blocks),
		Timestamp:         now.Unix(),
	}

	class := Classify(ev.Category, ev.AlertType, ev.Description)
	ev.Priority = class.Priority
	ev.Color = class.Color
	ev.Icon = class.Icon
	ev.Title = title(ev.AlertType)
	ev.Summary = ev.Description
	return ev, nil
}

func title(alertType string) string {
	if alertType == notify.NotAvailable {
		return "MONITORING ALERT"
	}
	return strings.ToUpper(alertType) + " ALERT"
}
