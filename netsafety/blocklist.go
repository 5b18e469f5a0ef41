package netsafety

import "net"

// blockedCIDRs is the exact IPv4/IPv6 blocklist from the proxy target
// validation rules: loopback, RFC1918 private ranges, CGNAT, link-local,
// the IPv4 "this network" block, multicast, the documented benchmarking
// range, the IPv4 broadcast address, and the IPv6 analogues.
var blockedCIDRs = mustParseCIDRs(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"100.64.0.0/10",
	"0.0.0.0/8",
	"224.0.0.0/4",
	"198.18.0.0/15",
	"255.255.255.255/32",
	"::1/128",
	"::/128",
	"fc00::/7",
	"fe80::/10",
	"ff00::/8",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("netsafety: invalid CIDR literal " + c + ": " + err.Error())
		}
		nets = append(nets, n)
	}
	return nets
}

// BlockedIP reports whether ip must never be contacted by the outbound
// proxy: unspecified, loopback, multicast, or within the fixed CIDR
// blocklist.
func BlockedIP(ip net.IP) bool {
	if ip.IsUnspecified() || ip.IsLoopback() || ip.IsMulticast() {
		return true
	}
	for _, n := range blockedCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
