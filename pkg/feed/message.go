package feed

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	arrivingSoonPhrase      = "곧 도착"
	awaitingDeparturePhrase = "출발대기"
)

var (
	ErrAwaitingDeparture   = errors.New("route is awaiting departure")
	ErrUnrecognisedMessage = errors.New("unrecognised arrival message")
)

var (
	minutesSecondsPattern = regexp.MustCompile(`(\d+)분(\d+)초후`)
	minutesPattern        = regexp.MustCompile(`(\d+)분후`)
	secondsPattern        = regexp.MustCompile(`(\d+)초후`)
	stopsPattern          = regexp.MustCompile(`\[(\d+)번째 전\]`)
)

// Arrival is the parsed form of a feed arrival message such as "3분23초후[1번째 전]".
type Arrival struct {
	ArrivalTimeSeconds int
	RemainingStops     int
}

func ParseArrivalMessage(message string) (Arrival, error) {
	if strings.Contains(message, arrivingSoonPhrase) {
		return Arrival{}, nil
	}

	if strings.Contains(message, awaitingDeparturePhrase) {
		return Arrival{}, ErrAwaitingDeparture
	}

	var arrivalTime int
	if match := minutesSecondsPattern.FindStringSubmatch(message); match != nil {
		minutes, err := strconv.Atoi(match[1])
		if err != nil {
			return Arrival{}, ErrUnrecognisedMessage
		}
		seconds, err := strconv.Atoi(match[2])
		if err != nil {
			return Arrival{}, ErrUnrecognisedMessage
		}
		if arrivalTime, err = minutesToSeconds(minutes, seconds); err != nil {
			return Arrival{}, err
		}
	} else if match := minutesPattern.FindStringSubmatch(message); match != nil {
		minutes, err := strconv.Atoi(match[1])
		if err != nil {
			return Arrival{}, ErrUnrecognisedMessage
		}
		if arrivalTime, err = minutesToSeconds(minutes, 0); err != nil {
			return Arrival{}, err
		}
	} else if match := secondsPattern.FindStringSubmatch(message); match != nil {
		seconds, err := strconv.Atoi(match[1])
		if err != nil {
			return Arrival{}, ErrUnrecognisedMessage
		}
		arrivalTime = seconds
	} else {
		return Arrival{}, ErrUnrecognisedMessage
	}

	remainingStops := 0
	if match := stopsPattern.FindStringSubmatch(message); match != nil {
		stops, err := strconv.Atoi(match[1])
		if err != nil {
			return Arrival{}, ErrUnrecognisedMessage
		}
		remainingStops = stops
	}

	return Arrival{
		ArrivalTimeSeconds: arrivalTime,
		RemainingStops:     remainingStops,
	}, nil
}

func minutesToSeconds(minutes int, seconds int) (int, error) {
	if minutes > (math.MaxInt-seconds)/60 {
		return 0, ErrUnrecognisedMessage
	}

	return minutes*60 + seconds, nil
}
