package aws

import (
	"testing"

	"archatlas/internal/domain"
)

func TestDatabaseComponent(t *testing.T) {
	encrypted := DatabaseComponent(Database{ID: "orders", Name: "orders", Engine: "postgres", Encrypted: true})
	if encrypted.ID != "rds-orders" || encrypted.Type != domain.ComponentTypeData {
		t.Errorf("component = %+v, want data component rds-orders", encrypted)
	}
	features := map[string]bool{}
	for _, f := range encrypted.Metadata.Features {
		features[f] = true
	}
	if !features["encryption"] || !features["private ip"] {
		t.Errorf("features = %v, want encryption and private ip", encrypted.Metadata.Features)
	}

	public := DatabaseComponent(Database{ID: "legacy", Name: "legacy", Engine: "mysql", Public: true})
	for _, f := range public.Metadata.Features {
		if f == "private ip" {
			t.Error("public database tagged private ip")
		}
	}
	if !public.Metadata.Exposed {
		t.Error("public database not marked exposed")
	}
}

func TestAssemble(t *testing.T) {
	instances := []Instance{
		{ID: "i-web", Name: "web", VPCID: "vpc-1", Exposed: true, HasIP: true, PublicSG: true},
		{ID: "i-worker", Name: "worker", VPCID: "vpc-1"},
	}
	functions := []domain.Component{
		{ID: "lambda-orders", Type: domain.ComponentTypeApp, Name: "orders"},
	}
	databases := []Database{
		{ID: "orders", Name: "orders", Engine: "postgres", Port: 5432, VPCID: "vpc-1", Encrypted: true},
		{ID: "other", Name: "other", Engine: "mysql", Port: 3306, VPCID: "vpc-2"},
	}
	tables := []domain.Component{
		{ID: "dynamodb-events", Type: domain.ComponentTypeData, Name: "events Table"},
	}
	restAPIs := []domain.Component{
		{ID: "apigw-1", Type: domain.ComponentTypeWeb, Name: "public-api", Zone: "DMZ"},
	}

	g := Assemble(instances, functions, databases, tables, nil, restAPIs, nil, nil, nil)

	byID := map[string]domain.Component{}
	for _, c := range g.Components {
		byID[c.ID] = c
	}
	edges := map[string]domain.Connection{}
	for _, conn := range g.Connections {
		edges[conn.From+">"+conn.To] = conn
	}

	if _, ok := byID["internet"]; !ok {
		t.Fatal("synthetic internet component missing")
	}

	if _, ok := edges["internet>ec2-i-web"]; !ok {
		t.Error("exposed instance has no ingress edge")
	}
	if _, ok := edges["internet>ec2-i-worker"]; ok {
		t.Error("private instance has an ingress edge")
	}

	gwEdge, ok := edges["internet>apigw-1"]
	if !ok {
		t.Fatal("gateway has no ingress edge")
	}
	if gwEdge.Protocol != "HTTPS" || gwEdge.Encryption == "" {
		t.Errorf("gateway ingress = %+v, want HTTPS with TLS", gwEdge)
	}

	fnEdge, ok := edges["apigw-1>lambda-orders"]
	if !ok {
		t.Fatal("gateway does not invoke the function")
	}
	if fnEdge.Auth != "IAM" {
		t.Errorf("gateway invoke auth = %q, want IAM", fnEdge.Auth)
	}

	dbEdge, ok := edges["ec2-i-web>rds-orders"]
	if !ok {
		t.Fatal("same-VPC instance not wired to database")
	}
	if dbEdge.Encryption != "TLS" {
		t.Errorf("encrypted database edge encryption = %q, want TLS", dbEdge.Encryption)
	}
	if len(dbEdge.Ports) != 1 || dbEdge.Ports[0] != 5432 {
		t.Errorf("database edge ports = %v, want [5432]", dbEdge.Ports)
	}

	if _, ok := edges["ec2-i-web>rds-other"]; ok {
		t.Error("cross-VPC database edge created")
	}

	if _, ok := edges["lambda-orders>dynamodb-events"]; !ok {
		t.Error("function not wired to its table")
	}
}
