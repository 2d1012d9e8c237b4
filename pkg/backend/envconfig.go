package backend

import (
	"os"
	"strconv"
	"time"
)

// EnvConfigProvider reads download/retry/concurrency knobs from
// ROTE_-prefixed environment variables, adapted from the teacher's
// pkg/tools.EnvironmentConfigProvider/DownloadConfigProvider pair (merged
// into one type here since rote never needed to swap the provider under
// test the way the teacher's two-layer indirection allowed).
type EnvConfigProvider struct{}

func (EnvConfigProvider) DownloadTimeout() time.Duration {
	return envDuration("ROTE_DOWNLOAD_TIMEOUT", 600*time.Second)
}

func (EnvConfigProvider) MaxRetries() int {
	return envInt("ROTE_MAX_RETRIES", 3)
}

func (EnvConfigProvider) RetryDelay() time.Duration {
	return envDuration("ROTE_RETRY_DELAY", 2*time.Second)
}

func (EnvConfigProvider) MaxConcurrentInstalls() int {
	return envInt("ROTE_PARALLEL_DOWNLOADS", 3)
}

func (EnvConfigProvider) Verbose() bool {
	return os.Getenv("ROTE_VERBOSE") == "true" || os.Getenv("ROTE_VERBOSE") == "1"
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(secs) * time.Second
}

// NewInstallContext builds the default InstallContext used outside tests.
func NewInstallContext() *InstallContext {
	return &InstallContext{
		Config: EnvConfigProvider{},
	}
}
