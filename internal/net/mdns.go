package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_livedraws._tcp"

// Peer is a share server found on the local network. Which walls it serves
// changes as pages open and close, so ask it with FetchWalls.
type Peer struct {
	Instance string
	Addr     string // host:port
}

// Advertise announces the share server on port over mDNS. Shutdown the
// returned server to withdraw it.
func Advertise(instance string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if instance == "" {
		instance = host
	}

	service, err := mdns.NewMDNSService(
		instance,
		serviceType,
		"",
		"",
		port,
		nil,
		txtRecords(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

func txtRecords() []string {
	return []string{"app=LiveDraws", "path=/walls"}
}

// Browse looks for share servers until timeout or ctx ends, calling found
// for each one with an IPv4 address.
func Browse(ctx context.Context, timeout time.Duration, found func(Peer)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if p, ok := peerFromEntry(e); ok {
				found(p)
			}
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		close(entries)
		<-done
		return ctx.Err()
	}
	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns query: %w", err)
	}
	return ctx.Err()
}

func peerFromEntry(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	return Peer{
		Instance: strings.TrimSuffix(e.Name, "."+serviceType+".local."),
		Addr:     fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
	}, true
}

// FetchWalls asks the share server at addr which walls it is serving right
// now.
func FetchWalls(ctx context.Context, client *http.Client, addr string) ([]WallInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/walls", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list walls: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list walls: status %d", resp.StatusCode)
	}
	var walls []WallInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&walls); err != nil {
		return nil, fmt.Errorf("decode wall list: %w", err)
	}
	return walls, nil
}
