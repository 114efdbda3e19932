package runtime

import (
	"os"
	"os/exec"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/common/version"
	"github.com/sirupsen/logrus"
)

// AuthDataEnv holds the upload credential ("accessKey:accessSecret").
// Missing credential is a startup failure, never a retryable condition.
const AuthDataEnv = "UPLOAD_AUTH_DATA"

func RunStartupSequence() {
	version.Print(true)
	CheckCredential()
	CheckTools()
}

func CheckCredential() {
	if os.Getenv(AuthDataEnv) == "" {
		logrus.Fatalf("%s environment variable not set", AuthDataEnv)
	}
}

func CheckTools() {
	binary := config.Get().Remote.Binary
	if _, err := exec.LookPath(binary); err != nil {
		logrus.Fatalf("transfer tool %q not found in PATH", binary)
	}
	logrus.Info("Transfer tool found: ", binary)

	if config.Get().Convert.Enabled {
		binary = config.Get().Convert.Binary
		if _, err := exec.LookPath(binary); err != nil {
			logrus.Fatalf("transcoding tool %q not found in PATH", binary)
		}
		logrus.Info("Transcoding tool found: ", binary)
	}
}
