package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

func logRequest(req *http.Request, status int) {
	log.Infof("%s -- %s -- %s -- %d", req.RemoteAddr, req.Method, req.URL.Path, status)
}

// logAndReturnError logs through the request-scoped entry and writes a plain
// text error. consoleStr, when given, replaces the logged message.
func logAndReturnError(w http.ResponseWriter, req *http.Request, entry *logrus.Entry, httpResponseStr string, code int, consoleStr ...string) {
	msg := httpResponseStr
	if len(consoleStr) > 0 {
		msg = consoleStr[0]
	}
	entry.WithFields(logrus.Fields{
		"status": code,
		"method": req.Method,
		"path":   req.URL.Path,
	}).Error(msg)
	http.Error(w, httpResponseStr, code)
	logRequest(req, code)
}
