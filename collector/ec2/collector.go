// Package ec2 collects compute instance and internet gateway inventory.
package ec2

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudinv/aws-dep-mapper/collector"
	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// API is the subset of the EC2 API the collectors use.
type API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeInternetGateways(ctx context.Context, params *ec2.DescribeInternetGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error)
}

func newAPI(ctx context.Context, region string) (API, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}

// InstanceCollector collects the EC2 instances of a region.
type InstanceCollector struct {
	client API
}

// NewInstanceCollector creates a new instance collector.
func NewInstanceCollector() *InstanceCollector {
	return &InstanceCollector{}
}

// Service returns the service name handled by this collector.
func (c *InstanceCollector) Service() string {
	return "EC2"
}

// Collect retrieves the instances of the region. Security groups are
// written as a comma-separated list of group ids so they tokenize
// cleanly during database correlation.
func (c *InstanceCollector) Collect(ctx context.Context, region string, _ collector.Options) ([]inventory.Record, error) {
	client := c.client
	if client == nil {
		var err error
		if client, err = newAPI(ctx, region); err != nil {
			return nil, err
		}
	}

	var records []inventory.Record
	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				groupIDs := make([]string, 0, len(instance.SecurityGroups))
				for _, sg := range instance.SecurityGroups {
					groupIDs = append(groupIDs, aws.ToString(sg.GroupId))
				}

				state := ""
				if instance.State != nil {
					state = string(instance.State.Name)
				}

				rec := inventory.NewRecord()
				rec.Set("Region", region)
				rec.Set("Service", "EC2")
				rec.Set("Resource Name", tagValue(instance.Tags, "Name"))
				rec.Set("Resource ID", aws.ToString(instance.InstanceId))
				rec.Set("Instance Type", string(instance.InstanceType))
				rec.Set("State", state)
				rec.Set("Private IP", aws.ToString(instance.PrivateIpAddress))
				rec.Set("Public IP", aws.ToString(instance.PublicIpAddress))
				rec.Set("Security Groups", strings.Join(groupIDs, ", "))
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

// GatewayCollector collects the internet gateways of a region.
type GatewayCollector struct {
	client API
}

// NewGatewayCollector creates a new gateway collector.
func NewGatewayCollector() *GatewayCollector {
	return &GatewayCollector{}
}

// Service returns the service name handled by this collector.
func (c *GatewayCollector) Service() string {
	return "Gateway"
}

// Collect retrieves the internet gateways of the region. The VPC ID
// column carries the first attached VPC, which is what the topology
// builder matches load balancer VPCs against.
func (c *GatewayCollector) Collect(ctx context.Context, region string, _ collector.Options) ([]inventory.Record, error) {
	client := c.client
	if client == nil {
		var err error
		if client, err = newAPI(ctx, region); err != nil {
			return nil, err
		}
	}

	var records []inventory.Record
	paginator := ec2.NewDescribeInternetGatewaysPaginator(client, &ec2.DescribeInternetGatewaysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe internet gateways: %w", err)
		}
		for _, igw := range page.InternetGateways {
			vpcID := ""
			vpcs := make([]string, 0, len(igw.Attachments))
			for _, att := range igw.Attachments {
				vpcs = append(vpcs, aws.ToString(att.VpcId))
			}
			if len(vpcs) > 0 {
				vpcID = vpcs[0]
			}

			state := "detached"
			if len(igw.Attachments) > 0 {
				state = "available"
			}

			rec := inventory.NewRecord()
			rec.Set("Region", region)
			rec.Set("Service", "Gateway")
			rec.Set("Type", "Internet Gateway")
			rec.Set("Resource Name", tagValue(igw.Tags, "Name"))
			rec.Set("Resource ID", aws.ToString(igw.InternetGatewayId))
			rec.Set("State", state)
			rec.Set("VPC ID", vpcID)
			rec.Set("VPC Attachments", strings.Join(vpcs, ", "))
			records = append(records, rec)
		}
	}
	return records, nil
}

func tagValue(tags []ec2types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
