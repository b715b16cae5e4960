package dashboard

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/persona"
	"github.com/zulandar/teamdesk/internal/session"
	"go.uber.org/zap"
)

const (
	sessionCookie = "teamdesk_session"
	sessionKey    = "teamdesk.session"
)

type server struct {
	sessions *session.Manager
	personas *persona.Registry
	logger   *zap.Logger
}

// withSession attaches the caller's session, creating one when the cookie is
// missing or has expired. With lock set the session mutex is held until the
// handler returns.
func (s *server) withSession(lock bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.resolveSession(c)
		if err != nil {
			s.respondError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		if !lock {
			c.Next()
			return
		}
		sess.Lock()
		defer sess.Unlock()
		c.Next()
	}
}

func (s *server) resolveSession(c *gin.Context) (*session.Session, error) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			return sess, nil
		}
	}
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	return sess, nil
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// respondError writes err as a JSON body with the status of its kind.
func (s *server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// redirect sends a form post back to a page, carrying an optional error or
// notice for display.
func redirect(c *gin.Context, path string, query url.Values, err error, notice string) {
	if query == nil {
		query = url.Values{}
	}
	if err != nil {
		query.Set("err", err.Error())
	} else if notice != "" {
		query.Set("ok", notice)
	}
	target := path
	if enc := query.Encode(); enc != "" {
		target += "?" + enc
	}
	c.Redirect(http.StatusSeeOther, target)
}
