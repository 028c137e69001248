package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verusid/login-consent/pkg/server/framework"
	svcframework "github.com/verusid/login-consent/pkg/service/framework"
)

type GetReadinessResponse struct {
	Status          svcframework.Status                       `json:"status"`
	ServiceStatuses map[svcframework.Type]svcframework.Status `json:"serviceStatuses"`
}

// Readiness godoc
//
// @Summary     Readiness
// @Description Runs a number of application specific checks to see if all
// @Description the relied upon services are healthy.
// @Tags        Readiness
// @Accept      json
// @Produce     json
// @Success     200 {object} GetReadinessResponse
// @Failure     500 {string} string "Internal server error"
// @Router      /readiness [get]
func Readiness(services []svcframework.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		readyServices := 0
		statuses := make(map[svcframework.Type]svcframework.Status)
		for _, s := range services {
			status := s.Status()
			statuses[s.Type()] = status
			if status.IsReady() {
				readyServices++
			}
		}

		var status svcframework.Status
		statusCode := http.StatusOK
		if readyServices < len(services) {
			statusCode = http.StatusInternalServerError
			status = svcframework.Status{
				Status:  svcframework.StatusNotReady,
				Message: fmt.Sprintf("out of [%d] services, [%d] are ready", len(services), readyServices),
			}
		} else {
			status = svcframework.Status{
				Status:  svcframework.StatusReady,
				Message: "all services ready",
			}
		}
		framework.Respond(c, GetReadinessResponse{Status: status, ServiceStatuses: statuses}, statusCode)
	}
}
