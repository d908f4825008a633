package node

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"
)

func listenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, errors.Wrap(err, "splitting endpoint")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrap(err, "parsing port")
	}
	return host, port, nil
}
