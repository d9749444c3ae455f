// Package rds collects database instance inventory, optionally
// restricted by resource tags.
package rds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/cloudinv/aws-dep-mapper/collector"
	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// API is the subset of the RDS API the collector uses.
type API interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// TaggingAPI is the Resource Groups Tagging API used for tag filtering.
type TaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// Collector collects the RDS instances of a region.
type Collector struct {
	client        API
	taggingClient TaggingAPI
}

// NewCollector creates a new RDS collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Service returns the service name handled by this collector.
func (c *Collector) Service() string {
	return "RDS"
}

// Collect retrieves the database instances of the region. When tag
// filters are configured only instances whose ARN matches the tag
// query are kept.
func (c *Collector) Collect(ctx context.Context, region string, opts collector.Options) ([]inventory.Record, error) {
	client := c.client
	tagging := c.taggingClient
	if client == nil || tagging == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if client == nil {
			client = rds.NewFromConfig(cfg)
		}
		if tagging == nil {
			tagging = resourcegroupstaggingapi.NewFromConfig(cfg)
		}
	}

	var taggedARNs map[string]bool
	if len(opts.TagFilters) > 0 {
		var err error
		if taggedARNs, err = c.taggedInstanceARNs(ctx, tagging, opts.TagFilters); err != nil {
			return nil, err
		}
		if len(taggedARNs) == 0 {
			return nil, nil
		}
	}

	var records []inventory.Record
	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe db instances: %w", err)
		}
		for _, db := range page.DBInstances {
			if taggedARNs != nil && !taggedARNs[aws.ToString(db.DBInstanceArn)] {
				continue
			}

			groupIDs := make([]string, 0, len(db.VpcSecurityGroups))
			for _, sg := range db.VpcSecurityGroups {
				groupIDs = append(groupIDs, aws.ToString(sg.VpcSecurityGroupId))
			}

			endpoint, port := "", ""
			if db.Endpoint != nil {
				endpoint = aws.ToString(db.Endpoint.Address)
				if db.Endpoint.Port != nil {
					port = strconv.Itoa(int(*db.Endpoint.Port))
				}
			}

			vpcID, subnetGroup := "", ""
			if db.DBSubnetGroup != nil {
				vpcID = aws.ToString(db.DBSubnetGroup.VpcId)
				subnetGroup = aws.ToString(db.DBSubnetGroup.DBSubnetGroupName)
			}

			rec := inventory.NewRecord()
			rec.Set("Region", region)
			rec.Set("Service", "RDS")
			rec.Set("Resource Name", aws.ToString(db.DBInstanceIdentifier))
			rec.Set("Resource ID", aws.ToString(db.DBInstanceIdentifier))
			rec.Set("Engine", aws.ToString(db.Engine))
			rec.Set("Engine Version", aws.ToString(db.EngineVersion))
			rec.Set("Instance Class", aws.ToString(db.DBInstanceClass))
			rec.Set("Status", aws.ToString(db.DBInstanceStatus))
			rec.Set("Multi-AZ", strconv.FormatBool(aws.ToBool(db.MultiAZ)))
			rec.Set("Storage Type", aws.ToString(db.StorageType))
			rec.Set("Endpoint", endpoint)
			rec.Set("Port", port)
			rec.Set("Security Groups", strings.Join(groupIDs, ", "))
			rec.Set("VPC ID", vpcID)
			rec.Set("Subnet Group", subnetGroup)
			records = append(records, rec)
		}
	}
	return records, nil
}

// taggedInstanceARNs resolves the tag filters to the set of matching
// database ARNs.
func (c *Collector) taggedInstanceARNs(ctx context.Context, tagging TaggingAPI, tags map[string]string) (map[string]bool, error) {
	tagFilters := make([]taggingtypes.TagFilter, 0, len(tags))
	for key, value := range tags {
		tagFilters = append(tagFilters, taggingtypes.TagFilter{
			Key:    aws.String(key),
			Values: []string{value},
		})
	}

	output, err := tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{"rds:db"},
		TagFilters:          tagFilters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get resources by tags: %w", err)
	}

	arns := make(map[string]bool, len(output.ResourceTagMappingList))
	for _, mapping := range output.ResourceTagMappingList {
		arns[aws.ToString(mapping.ResourceARN)] = true
	}
	return arns, nil
}
