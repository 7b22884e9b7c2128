package aspen

import "net"

// compareIP implements IpAddress/NotIpAddress: the operand is a CIDR (v4
// or v6), the request value a single IP, and the check is membership
// (spec.md §4.3). A bare IP operand (no "/") is treated as a /32 or /128
// host route.
func compareIP(op Operator, value, operand string) (matched bool, ok bool) {
	ip := net.ParseIP(value)
	if ip == nil {
		return false, false
	}

	_, network, err := net.ParseCIDR(operand)
	if err != nil {
		host := net.ParseIP(operand)
		if host == nil {
			return false, false
		}
		return ip.Equal(host), true
	}

	return network.Contains(ip), true
}
