package aws

import (
	"context"
	"fmt"
	"strings"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// Import inventories the account and assembles an architecture graph. A
// synthetic Internet component anchors the external zone; observable
// relationships (public exposure, gateway integrations, shared VPCs)
// become connections.
func Import(ctx context.Context) (domain.Graph, error) {
	accountID, err := GetAccountID(ctx)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("failed to resolve account: %w", err)
	}
	logging.LogInfo("importing architecture from AWS account", map[string]any{"account": accountID})

	instances, err := CollectInstances(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	functions, err := CollectFunctions(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	databases, err := CollectDatabases(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	tables, err := CollectTables(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	buckets, err := CollectBuckets(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	restAPIs, err := CollectRESTAPIs(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	httpAPIs, err := CollectHTTPAPIs(ctx)
	if err != nil {
		return domain.Graph{}, err
	}
	identity, err := CollectIdentity(ctx, accountID)
	if err != nil {
		return domain.Graph{}, err
	}
	keyMgmt, err := CollectKeyManagement(ctx, accountID)
	if err != nil {
		logging.LogWarn("skipping KMS inventory", map[string]any{"error": err.Error()})
	}

	return Assemble(instances, functions, databases, tables, buckets, restAPIs, httpAPIs, identity, keyMgmt), nil
}

// Assemble is the pure half of the importer: it wires collected inventory
// into a graph without touching the network.
func Assemble(
	instances []Instance,
	functions []domain.Component,
	databases []Database,
	tables, buckets, restAPIs, httpAPIs []domain.Component,
	identity, keyMgmt *domain.Component,
) domain.Graph {
	internet := domain.Component{
		ID:       "internet",
		Type:     domain.ComponentTypeNetwork,
		Name:     "Internet",
		Category: "External",
		Zone:     "External",
	}

	var g domain.Graph
	g.Components = append(g.Components, internet)

	gateways := append(append([]domain.Component(nil), restAPIs...), httpAPIs...)
	g.Components = append(g.Components, gateways...)

	for _, inst := range instances {
		c := InstanceComponent(inst)
		g.Components = append(g.Components, c)
		if inst.Exposed {
			g.Connections = append(g.Connections, domain.Connection{
				ID:       fmt.Sprintf("internet-%s", c.ID),
				From:     internet.ID,
				To:       c.ID,
				Label:    "Public ingress",
				Protocol: "ANY",
			})
		}
	}

	g.Components = append(g.Components, functions...)
	for _, gw := range gateways {
		g.Connections = append(g.Connections, domain.Connection{
			ID:         fmt.Sprintf("internet-%s", gw.ID),
			From:       internet.ID,
			To:         gw.ID,
			Label:      "HTTPS / TLS",
			Protocol:   "HTTPS",
			Ports:      []int{443},
			Encryption: "TLS 1.2+",
		})
		for _, fn := range functions {
			g.Connections = append(g.Connections, domain.Connection{
				ID:         fmt.Sprintf("%s-%s", gw.ID, fn.ID),
				From:       gw.ID,
				To:         fn.ID,
				Label:      "Invoke (IAM)",
				Protocol:   "HTTPS",
				Ports:      []int{443},
				Encryption: "TLS 1.2+",
				Auth:       "IAM",
			})
		}
	}

	for _, db := range databases {
		c := DatabaseComponent(db)
		g.Components = append(g.Components, c)
		for _, inst := range instances {
			if inst.VPCID == "" || inst.VPCID != db.VPCID {
				continue
			}
			conn := domain.Connection{
				ID:       fmt.Sprintf("ec2-%s-%s", inst.ID, c.ID),
				From:     "ec2-" + inst.ID,
				To:       c.ID,
				Label:    strings.ToUpper(db.Engine),
				Protocol: strings.ToUpper(db.Engine),
			}
			if db.Port > 0 {
				conn.Ports = []int{db.Port}
			}
			if db.Encrypted {
				conn.Encryption = "TLS"
			}
			g.Connections = append(g.Connections, conn)
		}
	}

	g.Components = append(g.Components, tables...)
	for _, fn := range functions {
		for _, table := range tables {
			g.Connections = append(g.Connections, domain.Connection{
				ID:         fmt.Sprintf("%s-%s", fn.ID, table.ID),
				From:       fn.ID,
				To:         table.ID,
				Label:      "DynamoDB (IAM)",
				Protocol:   "HTTPS",
				Ports:      []int{443},
				Encryption: "TLS 1.2+",
				Auth:       "IAM",
			})
		}
	}

	g.Components = append(g.Components, buckets...)
	if identity != nil {
		g.Components = append(g.Components, *identity)
	}
	if keyMgmt != nil {
		g.Components = append(g.Components, *keyMgmt)
	}
	return g
}
