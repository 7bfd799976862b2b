package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// applyEnvironment overlays any TAYOBELL_* variables present in env on top of c.
func (c *Config) applyEnvironment(env map[string]string) error {
	if env["TAYOBELL_LISTEN"] != "" {
		c.Listen = env["TAYOBELL_LISTEN"]
	}

	if env["TAYOBELL_BUS_API_URL"] != "" {
		c.Feed.BaseURL = env["TAYOBELL_BUS_API_URL"]
	}
	if env["TAYOBELL_BUS_API_KEY"] != "" {
		c.Feed.ServiceKey = env["TAYOBELL_BUS_API_KEY"]
	}
	if env["TAYOBELL_BUS_API_TIMEOUT"] != "" {
		timeout, err := time.ParseDuration(env["TAYOBELL_BUS_API_TIMEOUT"])
		if err != nil {
			return err
		}
		c.Feed.Timeout = timeout
	}

	if env["TAYOBELL_STORAGE"] != "" {
		c.Storage.Backend = env["TAYOBELL_STORAGE"]
	}

	if env["TAYOBELL_REDIS_ADDRESS"] != "" {
		c.Redis.Address = env["TAYOBELL_REDIS_ADDRESS"]
	}
	if env["TAYOBELL_REDIS_PASSWORD"] != "" {
		c.Redis.Password = env["TAYOBELL_REDIS_PASSWORD"]
	}
	if env["TAYOBELL_REDIS_DATABASE"] != "" {
		n, err := strconv.Atoi(env["TAYOBELL_REDIS_DATABASE"])
		if err != nil {
			return err
		}
		c.Redis.Database = n
	}

	if env["TAYOBELL_MONGODB_CONNECTION"] != "" {
		c.Mongo.Connection = env["TAYOBELL_MONGODB_CONNECTION"]
	}
	if env["TAYOBELL_MONGODB_DATABASE"] != "" {
		c.Mongo.Database = env["TAYOBELL_MONGODB_DATABASE"]
	}

	if env["TAYOBELL_WATCH_STATIONS"] != "" {
		c.Tracker.Stations = nil
		for _, station := range strings.Split(env["TAYOBELL_WATCH_STATIONS"], ",") {
			if station = strings.TrimSpace(station); station != "" {
				c.Tracker.Stations = append(c.Tracker.Stations, station)
			}
		}
	}
	if env["TAYOBELL_TRACKER_REFRESH"] != "" {
		refresh, err := time.ParseDuration(env["TAYOBELL_TRACKER_REFRESH"])
		if err != nil {
			return err
		}
		c.Tracker.RefreshRate = refresh
	}

	if env["TAYOBELL_EVENT_JOURNAL"] != "" {
		c.Events.Enabled = env["TAYOBELL_EVENT_JOURNAL"] == "YES"
	}

	return nil
}
