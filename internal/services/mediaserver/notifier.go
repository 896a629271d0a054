package mediaserver

import (
	"context"
	"log/slog"

	"trailgrab/internal/config"
	"trailgrab/internal/logging"
)

// CheckResult captures the outcome of one server operation.
type CheckResult struct {
	Name      string
	Type      string
	URL       string
	Enabled   bool
	Reachable bool
	Err       error
}

// Notifier fans refresh requests out to every enabled media server.
type Notifier struct {
	clients []Client
	logger  *slog.Logger
}

// NewNotifier builds clients for all enabled media servers. Servers that
// cannot be configured are logged and skipped.
func NewNotifier(servers []config.MediaServer, doer HTTPDoer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "mediaserver")

	notifier := &Notifier{logger: logger}
	for _, server := range servers {
		if !server.Enabled {
			continue
		}
		client, err := NewClient(server, doer)
		if err != nil {
			logger.Warn("skipping media server", logging.String("server", server.Name), logging.Error(err))
			continue
		}
		notifier.clients = append(notifier.clients, client)
	}
	return notifier
}

// NotifyAll asks every enabled server to refresh its library. Failures are
// logged and returned per server; they never abort the caller.
func (n *Notifier) NotifyAll(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(n.clients))
	for _, client := range n.clients {
		err := client.RefreshLibrary(ctx)
		if err != nil {
			n.logger.Warn("library refresh failed",
				logging.String("server", client.Name()),
				logging.Error(err))
		} else {
			n.logger.Info("library refresh requested", logging.String("server", client.Name()))
		}
		results = append(results, CheckResult{
			Name:      client.Name(),
			Type:      client.Type(),
			URL:       client.URL(),
			Enabled:   true,
			Reachable: err == nil,
			Err:       err,
		})
	}
	return results
}

// TestAll probes connectivity for every configured server, including
// disabled ones, so operators can verify credentials before enabling.
func TestAll(ctx context.Context, servers []config.MediaServer, doer HTTPDoer) []CheckResult {
	results := make([]CheckResult, 0, len(servers))
	for _, server := range servers {
		result := CheckResult{
			Name:    server.Name,
			Type:    server.Type,
			URL:     server.URL,
			Enabled: server.Enabled,
		}
		client, err := NewClient(server, doer)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		if err := client.TestConnection(ctx); err != nil {
			result.Err = err
		} else {
			result.Reachable = true
		}
		results = append(results, result)
	}
	return results
}
