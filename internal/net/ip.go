package net

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
)

// OutgoingIP finds the preferred local IP address to put in share links.
func OutgoingIP(logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; look at local interfaces instead.
		logger.Debug("no outgoing route, using interface addresses", "error", err)
		return localIPFallback(logger)
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func localIPFallback(logger *slog.Logger) (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	if ip := firstIPv4(addrs); ip != nil {
		return ip.String(), nil
	}
	logger.Warn("no suitable local IP found, share links will only work on this machine")
	return "127.0.0.1", nil
}

func firstIPv4(addrs []net.Addr) net.IP {
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip := ipnet.IP.To4(); ip != nil {
				return ip
			}
		}
	}
	return nil
}

// ShareLink is the viewer URL for a wall served on ip:port.
func ShareLink(ip string, port int, wallID string) string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(ip, fmt.Sprint(port)),
		Path:   "/walls/" + wallID,
	}
	return u.String()
}
