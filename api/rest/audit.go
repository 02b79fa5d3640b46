package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	mw "github.com/gurpsmanager/server/middleware"
)

// auditor fills the request-scoped audit fields.
type auditor struct {
	svc *audit.Service
}

func (a auditor) log(c *gin.Context, start time.Time, action string, campaignID, characterID int64, req interface{}, err error) {
	if a.svc == nil {
		return
	}
	e := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		Action:     action,
		Request:    req,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if id := mw.GetAccountID(c); id != 0 {
		e.AccountID = &id
	}
	if campaignID != 0 {
		e.CampaignID = &campaignID
	}
	if characterID != 0 {
		e.CharacterID = &characterID
	}
	if err != nil {
		e.Error = err.Error()
	}
	a.svc.Log(e)
}
