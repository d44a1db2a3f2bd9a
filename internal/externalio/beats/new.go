package beats

import (
	"cand/internal/global"
	"fmt"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Creates new loss alerter for the capture interface. Returns nil nil if no endpoint.
func New(namespace []string, endpoint string, iface string) (alerter *Alerter, err error) {
	if endpoint == "" {
		return
	}

	dial := func() (sender, error) {
		compression := lumberjack.CompressionLevel(0)
		timeout := lumberjack.Timeout(global.AlertSendTimeout)
		return lumberjack.SyncDial(endpoint, compression, timeout)
	}

	client, err := dial()
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}

	alerter = newAlerter(namespace, endpoint, iface, client, dial)
	return
}

func newAlerter(namespace []string, endpoint string, iface string, client sender, dial func() (sender, error)) (alerter *Alerter) {
	alerter = &Alerter{
		Namespace: append(append([]string(nil), namespace...), global.NSAlert),
		endpoint:  endpoint,
		iface:     iface,
		sink:      client,
		dial:      dial,
		queue:     make(chan lossEvent, global.AlertQueueSize),
	}
	return
}
