package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Environment contains the imported environment variables.
type Environment struct {
	// Debug vs Deploy
	Mode string `default:"dev"`
	// OpenML server root, without the API path
	Server string `default:"https://test.openml.org/"`
	// API path relative to the server root
	APIPath string `default:"api/v1/" split_words:"true"`
	// Key sent as the api_key parameter on every call
	APIKey string `split_words:"true" json:"-"`
	// Request timeout
	TimeoutSec int `default:"300" split_words:"true"`
	// Number of retries on transport failures and 5xx responses, 0 disables retrying
	RetryMax int `default:"0" split_words:"true"`
	// Retry backoff bounds
	RetryWaitMinMs int `default:"1000" split_words:"true"`
	RetryWaitMaxMs int `default:"30000" split_words:"true"`
	// Directory for downloaded datasets, defaults to the system temp dir
	CacheDir string `split_words:"true"`

	// Address the fake OpenML server listens on
	Addr string `default:":8080"`
	// Key granting admin rights on the fake OpenML server
	AdminKey string `split_words:"true" json:"-"`
	// Maximum number of runs waiting for evaluation
	QueueSize int `default:"1000" split_words:"true"`
	// Use persisted queue or default (memory only) queue.
	PersistedQueue bool `default:"false" split_words:"true"`
	// Directory to store the queue data in when persisted queue is used.
	QueueDir string `default:"./" split_words:"true"`
	// Name of queue when persisted queue is used.
	QueueName string `default:"evaluation_queue" split_words:"true"`
	// Rotating log file, stderr when empty
	LogFile string `split_words:"true"`

	// Evaluate queued runs on the server instead of waiting for an external engine
	EvaluatorEnabled bool `default:"false" split_words:"true"`
	// Evaluation engine id recorded on computed evaluations
	EvaluatorEngineID int `default:"1" split_words:"true"`
	// Seconds between queue polls
	EvaluatorPollIntervalSec int `default:"5" split_words:"true"`
	// Daily window, RFC3339 times, during which the evaluator is paused. Empty disables it.
	EvaluatorPauseTime  string `split_words:"true"`
	EvaluatorResumeTime string `split_words:"true"`
}

const (
	// StatusActive marks a dataset as usable.
	StatusActive = "active"
	// StatusDeactivated marks a dataset as withdrawn.
	StatusDeactivated = "deactivated"
	// StatusInPreparation is the status of a freshly uploaded dataset.
	StatusInPreparation = "in_preparation"
)

func (e Environment) String() string {
	settings, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("Failed to marshal env: %v", err).Error()
	}
	return fmt.Sprintf("Environment Settings:\n%s\n", string(settings))
}

// Timeout returns the configured request timeout.
func (e *Environment) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// Load imports the environment variables and returns them in an Environment. The env file
// is only read when OPENML_MODE is not already set and the file exists.
func Load(envFile string) (*Environment, error) {
	testEnv := os.Getenv("OPENML_MODE")
	if testEnv == "" && envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "Error loading %s file", envFile)
			}
		}
	}

	var env Environment
	err := envconfig.Process("openml", &env)
	if err != nil {
		return nil, errors.Wrap(err, "Error processing environment config")
	}
	return &env, nil
}

// Defaults returns an Environment populated with default values only.
func Defaults() *Environment {
	var env Environment
	// defaults are static and always valid
	_ = envconfig.Process("openml_defaults_only", &env)
	return &env
}

// ValidStatus reports whether status can be set through a status update.
func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusDeactivated
}

// PollInterval returns the delay between evaluator queue polls.
func (e *Environment) PollInterval() time.Duration {
	return time.Duration(e.EvaluatorPollIntervalSec) * time.Second
}
