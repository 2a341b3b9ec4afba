// Package session carries the authenticated caller through request handling.
package session

import (
	"github.com/gin-gonic/gin"
)

const (
	RoleCustomer     = "customer"
	RolePhotographer = "photographer"
	RoleAdmin        = "admin"
)

const (
	keyUserID    = "user_id"
	keyRole      = "role"
	keySessionID = "session_id"
)

// Session is the explicit caller identity passed into services.
type Session struct {
	ID     string
	UserID int64
	Role   string
}

func (s Session) IsAdmin() bool        { return s.Role == RoleAdmin }
func (s Session) IsPhotographer() bool { return s.Role == RolePhotographer }

// Set stores the caller on the gin context. Auth middleware calls it.
func Set(c *gin.Context, s Session) {
	c.Set(keyUserID, s.UserID)
	c.Set(keyRole, s.Role)
	c.Set(keySessionID, s.ID)
}

// FromGin returns the caller set by the auth middleware.
func FromGin(c *gin.Context) (Session, bool) {
	raw, exists := c.Get(keyUserID)
	if !exists {
		return Session{}, false
	}
	var userID int64
	switch v := raw.(type) {
	case int64:
		userID = v
	case float64:
		userID = int64(v)
	case int:
		userID = int64(v)
	}
	if userID <= 0 {
		return Session{}, false
	}
	return Session{
		ID:     c.GetString(keySessionID),
		UserID: userID,
		Role:   c.GetString(keyRole),
	}, true
}
