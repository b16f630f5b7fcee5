package validator

import (
	"strings"

	"archatlas/internal/domain"
)

// Component classes used by the graph-shape checks. Matching is a
// case-insensitive substring test over the component's name, category and
// type so imported diagrams classify the same way as palette-built ones.
var (
	firewallKinds     = []string{"firewall", "waf", "ngfw"}
	loadBalancerKinds = []string{"load balancer", "load-balancer", "alb", "nlb", "app gateway"}
	serverKinds       = []string{"web server", "app server", "web-server", "app-server", "service", "ec2", "vm", "compute"}
	databaseKinds     = []string{"database", "postgres", "mysql", "sql", "rds", "mongo", "cosmos"}
	cacheKinds        = []string{"cache", "redis", "memcached", "elasticache"}
	authKinds         = []string{"auth", "identity", "oauth", "active directory", "idp"}
	monitoringKinds   = []string{"monitoring", "logging", "metrics", "siem"}
	externalKinds     = []string{"external", "internet", "public network", "client"}
)

func kindText(c *domain.Component) string {
	return strings.ToLower(c.Name + " " + c.Category + " " + string(c.Type))
}

func matchesKind(c *domain.Component, kinds []string) bool {
	if c == nil {
		return false
	}
	text := kindText(c)
	for _, k := range kinds {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func isFirewall(c *domain.Component) bool     { return matchesKind(c, firewallKinds) }
func isLoadBalancer(c *domain.Component) bool { return matchesKind(c, loadBalancerKinds) }
func isServer(c *domain.Component) bool       { return matchesKind(c, serverKinds) }
func isCache(c *domain.Component) bool        { return matchesKind(c, cacheKinds) }
func isAuth(c *domain.Component) bool         { return matchesKind(c, authKinds) }
func isMonitoring(c *domain.Component) bool   { return matchesKind(c, monitoringKinds) }

func isDatabase(c *domain.Component) bool {
	if c == nil {
		return false
	}
	return c.Type == domain.ComponentTypeData || matchesKind(c, databaseKinds)
}

func isExternal(c *domain.Component) bool {
	if c == nil {
		return false
	}
	return strings.EqualFold(c.Zone, "external") || matchesKind(c, externalKinds)
}
