package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses rate limiting for loopback and private
// addresses, plus any of the extra CIDRs (e.g. a monitoring subnet).
// Unparseable CIDRs are ignored.
func AllowPrivateIP(extra ...string) AllowFunc {
	var nets []*net.IPNet
	for _, cidr := range extra {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		// 10.0.0.0/8, 172.16/12, 192.168/16, loopback
		if parsed.IsLoopback() || parsed.IsPrivate() {
			return true
		}
		for _, n := range nets {
			if n.Contains(parsed) {
				return true
			}
		}
		return false
	}
}
