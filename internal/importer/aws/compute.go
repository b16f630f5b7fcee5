package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// Instance is the slice of EC2 state the importer keeps: enough to build
// a component and to wire same-VPC connections afterwards.
type Instance struct {
	ID       string
	Name     string
	VPCID    string
	Exposed  bool
	HasIP    bool
	PublicSG bool
}

// CollectInstances lists EC2 instances in the configured region and marks
// public exposure from public IPs plus open security groups.
func CollectInstances(ctx context.Context) ([]Instance, error) {
	client, err := GetAWSClient(ctx, "ec2")
	if err != nil {
		return nil, fmt.Errorf("failed to get EC2 client: %w", err)
	}
	ec2Svc := client.(*ec2.Client)

	output, err := ec2Svc.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}
	if output == nil || output.Reservations == nil {
		return nil, nil
	}

	openGroups, err := collectOpenSecurityGroups(ctx, ec2Svc)
	if err != nil {
		logging.LogWarn("failed to analyze security groups, exposure flags may be incomplete", map[string]any{
			"error": err.Error(),
		})
		openGroups = map[string]bool{}
	}

	var instances []Instance
	for _, reservation := range output.Reservations {
		for _, raw := range reservation.Instances {
			instances = append(instances, extractInstance(raw, openGroups))
		}
	}

	logging.LogInfo("collected EC2 instances", map[string]any{"count": len(instances)})
	return instances, nil
}

func extractInstance(raw ec2types.Instance, openGroups map[string]bool) Instance {
	inst := Instance{
		ID:    aws.ToString(raw.InstanceId),
		VPCID: aws.ToString(raw.VpcId),
		HasIP: raw.PublicIpAddress != nil,
	}
	for _, tag := range raw.Tags {
		if aws.ToString(tag.Key) == "Name" {
			inst.Name = aws.ToString(tag.Value)
			break
		}
	}
	if inst.Name == "" {
		inst.Name = inst.ID
	}
	for _, sg := range raw.SecurityGroups {
		if openGroups[aws.ToString(sg.GroupId)] {
			inst.PublicSG = true
			break
		}
	}
	inst.Exposed = inst.HasIP && inst.PublicSG
	return inst
}

// collectOpenSecurityGroups returns the ids of security groups with an
// inbound rule open to 0.0.0.0/0 or ::/0.
func collectOpenSecurityGroups(ctx context.Context, ec2Svc *ec2.Client) (map[string]bool, error) {
	output, err := ec2Svc.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}

	open := make(map[string]bool)
	if output == nil {
		return open, nil
	}
	for _, sg := range output.SecurityGroups {
		if SecurityGroupOpenToInternet(sg) {
			open[aws.ToString(sg.GroupId)] = true
		}
	}
	return open, nil
}

// SecurityGroupOpenToInternet reports whether any inbound rule allows all
// source addresses.
func SecurityGroupOpenToInternet(sg ec2types.SecurityGroup) bool {
	for _, perm := range sg.IpPermissions {
		for _, ipRange := range perm.IpRanges {
			if aws.ToString(ipRange.CidrIp) == "0.0.0.0/0" {
				return true
			}
		}
		for _, ipv6Range := range perm.Ipv6Ranges {
			if aws.ToString(ipv6Range.CidrIpv6) == "::/0" {
				return true
			}
		}
	}
	return false
}

// InstanceComponent converts a collected instance into a graph component.
// Exposed instances land in the DMZ as web components; the rest are
// internal app components.
func InstanceComponent(inst Instance) domain.Component {
	c := domain.Component{
		ID:       "ec2-" + inst.ID,
		Type:     domain.ComponentTypeApp,
		Name:     inst.Name,
		Category: "Compute",
		Zone:     "Internal",
		Metadata: domain.Metadata{
			Vendor:  "AWS EC2",
			Exposed: inst.Exposed,
		},
	}
	if inst.Exposed {
		c.Type = domain.ComponentTypeWeb
		c.Zone = "DMZ"
	}
	return c
}

// CollectFunctions lists Lambda functions as internal app components.
func CollectFunctions(ctx context.Context) ([]domain.Component, error) {
	client, err := GetAWSClient(ctx, "lambda")
	if err != nil {
		return nil, fmt.Errorf("failed to get Lambda client: %w", err)
	}
	lambdaSvc := client.(*lambdasvc.Client)

	var components []domain.Component
	var marker *string
	for {
		output, err := lambdaSvc.ListFunctions(ctx, &lambdasvc.ListFunctionsInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("failed to list functions: %w", err)
		}
		for _, fn := range output.Functions {
			name := aws.ToString(fn.FunctionName)
			components = append(components, domain.Component{
				ID:       "lambda-" + name,
				Type:     domain.ComponentTypeApp,
				Name:     name,
				Category: "Compute",
				Zone:     "Internal",
				Metadata: domain.Metadata{
					Vendor:  "AWS Lambda",
					Version: string(fn.Runtime),
				},
			})
		}
		if output.NextMarker == nil {
			break
		}
		marker = output.NextMarker
	}

	logging.LogInfo("collected Lambda functions", map[string]any{"count": len(components)})
	return components, nil
}
