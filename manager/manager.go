package manager

import (
	"github.com/sirupsen/logrus"

	"meshassist/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
