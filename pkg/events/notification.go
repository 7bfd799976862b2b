package events

import (
	"fmt"

	"github.com/chanhyuk05/tayobell/pkg/transit"
)

type NotificationData struct {
	Title   string
	Message string
}

func GetNotificationData(e *transit.Event) NotificationData {
	notificationData := NotificationData{}

	switch e.Type {
	case transit.EventTypeCallRequested:
		notificationData.Title = "Call requested"
		notificationData.Message = fmt.Sprintf("%s번 버스 승차 호출 (정류장 %s)", e.RouteNo, e.StationID)
	case transit.EventTypeCallCancelled:
		notificationData.Title = "Call cancelled"
		notificationData.Message = fmt.Sprintf("%s번 버스 호출 취소 (정류장 %s)", e.RouteNo, e.StationID)
	case transit.EventTypeCallEnded:
		notificationData.Title = "Call ended"
		notificationData.Message = fmt.Sprintf("%s번 버스 호출 종료 (정류장 %s)", e.RouteNo, e.StationID)
	default:
		notificationData.Title = string(e.Type)
		notificationData.Message = fmt.Sprintf("%s %s", e.StationID, e.RouteNo)
	}

	return notificationData
}
