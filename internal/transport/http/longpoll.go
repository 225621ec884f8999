package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubchat/clubchat-server/internal/core"
)

// longPoll serves bounded-wait snapshots of room state for clients that
// cannot hold a WebSocket. A request waits at most timeout for the room
// version to move past the caller's cursor, then returns the current
// snapshot either way.
type longPoll struct {
	hub     *core.Hub
	timeout time.Duration
}

type historyResponse struct {
	Version  uint64         `json:"version"`
	Messages []core.Message `json:"messages"`
}

// GET /api/history?since=<version>
func (lp *longPoll) history(c *gin.Context) {
	since, err := strconv.ParseUint(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		c.JSON(stdhttp.StatusBadRequest, gin.H{"error": "invalid since cursor"})
		return
	}

	deadline := time.Now().Add(lp.timeout)
	for {
		if lp.hub.Version() != since || !time.Now().Before(deadline) {
			messages, version, err := lp.hub.HistorySnapshot(c.Request.Context())
			if err != nil {
				c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(stdhttp.StatusOK, historyResponse{Version: version, Messages: messages})
			return
		}
		select {
		case <-c.Request.Context().Done():
			return
		case <-time.After(pollInterval):
		}
	}
}

// GET /api/users
func (lp *longPoll) users(c *gin.Context) {
	roster, err := lp.hub.RosterSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(stdhttp.StatusOK, gin.H{"users": roster})
}

// GET /api/pinned
func (lp *longPoll) pinned(c *gin.Context) {
	pinned, err := lp.hub.PinnedSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(stdhttp.StatusOK, gin.H{"pinned": pinned})
}
