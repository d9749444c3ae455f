// Package elasticache collects cache node inventory. The topology
// builder does not consume these records; they only enrich the
// inventory workbook.
package elasticache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/cloudinv/aws-dep-mapper/collector"
	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// API is the subset of the ElastiCache API the collector uses.
type API interface {
	DescribeReplicationGroups(ctx context.Context, params *elasticache.DescribeReplicationGroupsInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeReplicationGroupsOutput, error)
}

// TaggingAPI is the Resource Groups Tagging API used to enumerate
// replication groups.
type TaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// Collector collects the cache nodes of every replication group in a
// region, one record per node.
type Collector struct {
	client        API
	taggingClient TaggingAPI
}

// NewCollector creates a new ElastiCache collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Service returns the service name handled by this collector.
func (c *Collector) Service() string {
	return "ElastiCache"
}

// Collect retrieves all cache nodes of the region, optionally
// restricted by tag filters.
func (c *Collector) Collect(ctx context.Context, region string, opts collector.Options) ([]inventory.Record, error) {
	client := c.client
	tagging := c.taggingClient
	if client == nil || tagging == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if client == nil {
			client = elasticache.NewFromConfig(cfg)
		}
		if tagging == nil {
			tagging = resourcegroupstaggingapi.NewFromConfig(cfg)
		}
	}

	arns, err := c.replicationGroupARNs(ctx, tagging, opts.TagFilters)
	if err != nil {
		return nil, err
	}
	if len(arns) == 0 {
		return nil, nil
	}

	var records []inventory.Record
	for _, arn := range arns {
		// DescribeReplicationGroups takes one id at a time.
		groupID := idFromARN(arn)
		resp, err := client.DescribeReplicationGroups(ctx, &elasticache.DescribeReplicationGroupsInput{
			ReplicationGroupId: aws.String(groupID),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe replication group %s: %w", groupID, err)
		}
		if len(resp.ReplicationGroups) == 0 {
			slog.Warn("no replication group details found", "replication_group_id", groupID)
			continue
		}

		for _, rg := range resp.ReplicationGroups {
			for _, ng := range rg.NodeGroups {
				shard := aws.ToString(ng.NodeGroupId)
				for _, member := range ng.NodeGroupMembers {
					if member.ReadEndpoint == nil {
						continue
					}
					role := "replica"
					if aws.ToString(member.CurrentRole) == "primary" {
						role = "primary"
					}

					rec := inventory.NewRecord()
					rec.Set("Region", region)
					rec.Set("Service", "ElastiCache")
					rec.Set("Resource Name", aws.ToString(member.CacheClusterId))
					rec.Set("Resource ID", arn)
					rec.Set("Cluster", aws.ToString(rg.ReplicationGroupId))
					rec.Set("Shard", shard)
					rec.Set("Role", role)
					rec.Set("Endpoint", fmt.Sprintf("%s:%d",
						aws.ToString(member.ReadEndpoint.Address), aws.ToInt32(member.ReadEndpoint.Port)))
					records = append(records, rec)
				}
			}
		}
	}
	return records, nil
}

// replicationGroupARNs lists the replication groups of the region via
// the tagging API, applying the tag filters when present.
func (c *Collector) replicationGroupARNs(ctx context.Context, tagging TaggingAPI, tags map[string]string) ([]string, error) {
	tagFilters := make([]taggingtypes.TagFilter, 0, len(tags))
	for key, value := range tags {
		tagFilters = append(tagFilters, taggingtypes.TagFilter{
			Key:    aws.String(key),
			Values: []string{value},
		})
	}

	output, err := tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{"elasticache:replicationgroup"},
		TagFilters:          tagFilters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get resources by tags: %w", err)
	}

	arns := make([]string, 0, len(output.ResourceTagMappingList))
	for _, mapping := range output.ResourceTagMappingList {
		if mapping.ResourceARN != nil {
			arns = append(arns, *mapping.ResourceARN)
		}
	}
	return arns, nil
}

func idFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	return parts[len(parts)-1]
}
