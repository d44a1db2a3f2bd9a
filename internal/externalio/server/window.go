package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default query window reaches this far back
const defaultLookback time.Duration = time.Minute

// Reads starttime/endtime query values.
// starttime: RFC3339Nano, or a relative duration like -5m (unparsable relative falls back to the default).
// endtime: RFC3339Nano or "now" (default).
func parseWindow(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	switch {
	case rawStartTime == "":
		start = now.Add(-defaultLookback)
	case rawStartTime[0] == '-' || rawStartTime[0] == '+':
		dur, parseErr := time.ParseDuration(rawStartTime)
		if parseErr != nil {
			start = now.Add(-defaultLookback)
		} else {
			start = now.Add(dur)
		}
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStartTime)
		if err != nil {
			err = fmt.Errorf("invalid starttime: %v", err)
			return
		}
	}

	rawEndTime := clientRequest.FormValue("endtime")
	if rawEndTime == "" || rawEndTime == "now" {
		end = now
	} else {
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid endtime: %v", err)
			return
		}
	}

	if start.After(end) {
		err = fmt.Errorf("starttime is after endtime")
		return
	}
	return
}

// Namespace components after the route prefix. Nil for the route root.
func pathNamespace(clientRequest *http.Request, prefix string) (namespace []string) {
	raw := strings.Trim(strings.TrimPrefix(clientRequest.URL.Path, prefix), "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}
