package worker

import (
	"github.com/connect-campus/peer-session-service/internal/service"
)

// StartActivityWorker registers the activity trail handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
